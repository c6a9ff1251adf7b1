package main

import (
	"context"
	"errors"
	"testing"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/segyhp/sacco-engine/internal/testutil"
)

type fakeRefresher struct {
	calls int
	err   error
}

func (f *fakeRefresher) RefreshLimits(ctx context.Context) (int, error) {
	f.calls++
	return 3, f.err
}

func TestSetupCronJobs(t *testing.T) {
	cfg := testutil.TestConfig()
	cfg.Scheduler.LimitRefreshSpec = "0 2 * * *"

	c := cron.New()
	require.NoError(t, setupCronJobs(context.Background(), c, cfg, &fakeRefresher{}, zap.NewNop()))
	assert.Len(t, c.Entries(), 1)

	cfg.Scheduler.LimitRefreshSpec = "every night"
	assert.Error(t, setupCronJobs(context.Background(), cron.New(), cfg, &fakeRefresher{}, zap.NewNop()))
}

func TestRefreshLimits(t *testing.T) {
	ok := &fakeRefresher{}
	require.NoError(t, refreshLimits(context.Background(), ok, zap.NewNop()))
	assert.Equal(t, 1, ok.calls)

	boom := errors.New("db gone")
	failing := &fakeRefresher{err: boom}
	assert.ErrorIs(t, refreshLimits(context.Background(), failing, zap.NewNop()), boom)
}
