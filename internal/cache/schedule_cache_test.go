package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segyhp/sacco-engine/internal/config"
	"github.com/segyhp/sacco-engine/internal/domain"
	customError "github.com/segyhp/sacco-engine/pkg/errors"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, ScheduleCache) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	return s, NewScheduleCache(client, time.Hour)
}

func sampleSchedule(loanID uuid.UUID) *domain.Schedule {
	return &domain.Schedule{
		LoanID:           &loanID,
		Principal:        decimal.NewFromInt(1000),
		ProcessingFee:    decimal.NewFromInt(5),
		PrincipalWithFee: decimal.NewFromInt(1005),
		MonthlyRate:      decimal.Zero,
		TermMonths:       3,
		MonthlyPayment:   decimal.NewFromInt(335),
		TotalPayable:     decimal.NewFromInt(1005),
		Entries: []domain.ScheduleEntry{
			{Month: 1, DueDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Payment: decimal.NewFromInt(335)},
		},
	}
}

func TestScheduleCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, c := setupCache(t)
	loanID := uuid.New()

	_, found, err := c.Get(ctx, loanID)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, loanID, sampleSchedule(loanID)))
	assert.True(t, s.Exists(scheduleKey(loanID)))
	assert.Equal(t, time.Hour, s.TTL(scheduleKey(loanID)))

	got, found, err := c.Get(ctx, loanID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.MonthlyPayment.Equal(decimal.NewFromInt(335)))
	require.Len(t, got.Entries, 1)
	assert.Equal(t, 1, got.Entries[0].Month)
}

func TestScheduleCache_ExpiresAndInvalidates(t *testing.T) {
	ctx := context.Background()
	s, c := setupCache(t)
	loanID := uuid.New()

	require.NoError(t, c.Set(ctx, loanID, sampleSchedule(loanID)))
	s.FastForward(2 * time.Hour)

	_, found, err := c.Get(ctx, loanID)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, loanID, sampleSchedule(loanID)))
	require.NoError(t, c.Invalidate(ctx, loanID))
	assert.False(t, s.Exists(scheduleKey(loanID)))
}

func TestScheduleCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	s, c := setupCache(t)
	loanID := uuid.New()

	require.NoError(t, s.Set(scheduleKey(loanID), "not json"))

	_, found, err := c.Get(ctx, loanID)
	assert.False(t, found)
	assert.Equal(t, customError.ErrCodeCacheError, customError.Code(err))
}

func TestScheduleCache_ServerDown(t *testing.T) {
	ctx := context.Background()
	s, c := setupCache(t)
	s.Close()

	err := c.Set(ctx, uuid.New(), sampleSchedule(uuid.New()))
	assert.Equal(t, customError.ErrCodeCacheError, customError.Code(err))
}

func TestConnect(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client, err := Connect(context.Background(), config.RedisConfig{Addr: s.Addr()})
	require.NoError(t, err)
	defer client.Close()

	s.Close()
	_, err = Connect(context.Background(), config.RedisConfig{Addr: s.Addr()})
	assert.Error(t, err)
}
