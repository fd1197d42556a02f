package usecases_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/core/usecases"
)

func TestFreeTierQuota_PaidTiersUnlimited(t *testing.T) {
	q := usecases.NewFreeTierQuota(newMemCache(), 1, time.UTC)
	ctx := context.Background()

	for _, tier := range []domain.Tier{domain.TierBasic, domain.TierPro} {
		for i := 0; i < 3; i++ {
			ok, err := q.Reserve(ctx, "u1", tier)
			require.NoError(t, err)
			assert.True(t, ok, string(tier))
		}
	}
	ok, _ := q.Reserve(ctx, "u1", domain.TierFree)
	assert.True(t, ok, "paid reservations do not consume the free quota")
}

func TestFreeTierQuota_OnePerDay(t *testing.T) {
	q := usecases.NewFreeTierQuota(newMemCache(), 1, time.UTC)
	ctx := context.Background()

	ok, err := q.Reserve(ctx, "u1", domain.TierFree)
	require.NoError(t, err)
	assert.True(t, ok, "first search is always allowed")

	ok, _ = q.Reserve(ctx, "u1", domain.TierFree)
	assert.False(t, ok)

	ok, _ = q.Reserve(ctx, "u2", domain.TierFree)
	assert.True(t, ok, "quota is per user")
}

func TestFreeTierQuota_DailyLimit(t *testing.T) {
	q := usecases.NewFreeTierQuota(newMemCache(), 3, time.UTC)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, err := q.Reserve(ctx, "u1", domain.TierFree)
		require.NoError(t, err)
		assert.True(t, ok, "reservation %d", i)
	}
	ok, _ := q.Reserve(ctx, "u1", domain.TierFree)
	assert.False(t, ok)
}

func TestFreeTierQuota_DeniedReservationConsumesNothing(t *testing.T) {
	q := usecases.NewFreeTierQuota(newMemCache(), 1, time.UTC)
	ctx := context.Background()

	ok, _ := q.Reserve(ctx, "u1", domain.TierFree)
	require.True(t, ok)
	for i := 0; i < 3; i++ {
		ok, _ = q.Reserve(ctx, "u1", domain.TierFree)
		assert.False(t, ok)
	}

	// one release frees exactly one slot even after several denials
	require.NoError(t, q.Release(ctx, "u1", domain.TierFree))
	ok, _ = q.Reserve(ctx, "u1", domain.TierFree)
	assert.True(t, ok)
	ok, _ = q.Reserve(ctx, "u1", domain.TierFree)
	assert.False(t, ok)
}

func TestFreeTierQuota_ConcurrentReservations(t *testing.T) {
	q := usecases.NewFreeTierQuota(newMemCache(), 2, time.UTC)
	ctx := context.Background()

	var granted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := q.Reserve(ctx, "u1", domain.TierFree)
			assert.NoError(t, err)
			if ok {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(2), granted.Load())
}

func TestFreeTierQuota_KeyExpires(t *testing.T) {
	cache := newMemCache()
	q := usecases.NewFreeTierQuotaAt(cache, 1, time.UTC, func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	})
	ok, _ := q.Reserve(context.Background(), "u1", domain.TierFree)
	require.True(t, ok)

	assert.Equal(t, 48*3600, cache.ttls["quota:free:u1:2026-03-01"])
}

func TestFreeTierQuota_ResetsAtMidnight(t *testing.T) {
	cache := newMemCache()
	ctx := context.Background()

	// searched at 23:59 on the 1st
	late := usecases.NewFreeTierQuotaAt(cache, 1, time.UTC, func() time.Time {
		return time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	})
	ok, _ := late.Reserve(ctx, "u1", domain.TierFree)
	require.True(t, ok)
	ok, _ = late.Reserve(ctx, "u1", domain.TierFree)
	assert.False(t, ok)

	// two minutes later the calendar date differs and the quota is free again
	early := usecases.NewFreeTierQuotaAt(cache, 1, time.UTC, func() time.Time {
		return time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)
	})
	ok, _ = early.Reserve(ctx, "u1", domain.TierFree)
	assert.True(t, ok)
}
