package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segyhp/sacco-engine/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		wantErr bool
	}{
		{name: "json debug", cfg: config.LoggingConfig{Format: "json", Level: "debug"}},
		{name: "console warn", cfg: config.LoggingConfig{Format: "console", Level: "WARN"}},
		{name: "unknown format", cfg: config.LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, "sacco-test")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger)
		})
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	logger, err := New(config.LoggingConfig{Format: "json", Level: "error"}, "sacco-test")
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zap.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zap.InfoLevel, parseLevel("verbose"))
}
