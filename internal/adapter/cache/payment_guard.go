package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eventtribe/ticketing/internal/core/ports"
)

// PaymentGuard holds a short-lived Redis key per booking while an STK Push
// is outstanding. The TTL bounds how long a lost release can block retries.
type PaymentGuard struct {
	rdb redis.Cmdable
	ttl time.Duration
}

var _ ports.PaymentGuard = (*PaymentGuard)(nil)

func NewPaymentGuard(rdb redis.Cmdable, ttl time.Duration) *PaymentGuard {
	return &PaymentGuard{rdb: rdb, ttl: ttl}
}

func inflightKey(bookingID string) string {
	return fmt.Sprintf("payment:inflight:%s", bookingID)
}

func (g *PaymentGuard) Acquire(ctx context.Context, bookingID string) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, inflightKey(bookingID), 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire payment guard for booking %s: %w", bookingID, err)
	}
	return ok, nil
}

func (g *PaymentGuard) Release(ctx context.Context, bookingID string) error {
	if err := g.rdb.Del(ctx, inflightKey(bookingID)).Err(); err != nil {
		return fmt.Errorf("release payment guard for booking %s: %w", bookingID, err)
	}
	return nil
}
