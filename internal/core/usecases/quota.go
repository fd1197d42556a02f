package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/samirrijal/areainsight/internal/core/domain"
	"github.com/samirrijal/areainsight/internal/core/ports"
)

const quotaTTLSeconds = 48 * 3600

// FreeTierQuota limits free-tier users to a number of analyses per local
// calendar day. Paid tiers are never limited.
type FreeTierQuota struct {
	counters   ports.CounterStore
	dailyLimit int
	loc        *time.Location
	now        func() time.Time
}

// NewFreeTierQuota creates a quota gate backed by counters. A nil loc means
// time.Local.
func NewFreeTierQuota(counters ports.CounterStore, dailyLimit int, loc *time.Location) *FreeTierQuota {
	if dailyLimit <= 0 {
		dailyLimit = 1
	}
	if loc == nil {
		loc = time.Local
	}
	return &FreeTierQuota{counters: counters, dailyLimit: dailyLimit, loc: loc, now: time.Now}
}

// NewFreeTierQuotaAt is NewFreeTierQuota with an injected clock.
func NewFreeTierQuotaAt(counters ports.CounterStore, dailyLimit int, loc *time.Location, now func() time.Time) *FreeTierQuota {
	q := NewFreeTierQuota(counters, dailyLimit, loc)
	if now != nil {
		q.now = now
	}
	return q
}

// Reserve claims one of today's analyses for userID. The claim and the
// limit check are a single counter increment, so concurrent requests can
// never exceed the limit. A denied reservation consumes nothing.
//
// The day boundary is the calendar date in the configured location, so a
// search just before midnight frees the quota again right after it.
func (q *FreeTierQuota) Reserve(ctx context.Context, userID string, tier domain.Tier) (bool, error) {
	if tier != domain.TierFree {
		return true, nil
	}
	key := q.key(userID)
	n, err := q.counters.Incr(ctx, key, quotaTTLSeconds)
	if err != nil {
		return false, fmt.Errorf("reserve quota: %w", err)
	}
	if n <= int64(q.dailyLimit) {
		return true, nil
	}
	if _, err := q.counters.Decr(ctx, key); err != nil {
		return false, fmt.Errorf("undo quota overflow: %w", err)
	}
	return false, nil
}

// Release gives back a reservation whose analysis did not complete.
func (q *FreeTierQuota) Release(ctx context.Context, userID string, tier domain.Tier) error {
	if tier != domain.TierFree {
		return nil
	}
	if _, err := q.counters.Decr(ctx, q.key(userID)); err != nil {
		return fmt.Errorf("release quota: %w", err)
	}
	return nil
}

func (q *FreeTierQuota) key(userID string) string {
	return "quota:free:" + userID + ":" + q.now().In(q.loc).Format("2006-01-02")
}
