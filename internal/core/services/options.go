package services

import (
	"time"

	"go.uber.org/zap"

	"github.com/eventtribe/ticketing/internal/platform/metrics"
)

type Option func(*deps)

type deps struct {
	log     *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func WithLogger(log *zap.Logger) Option {
	return func(d *deps) { d.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *deps) { d.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(d *deps) { d.now = now }
}

func newDeps(opts []Option) deps {
	d := deps{
		log: zap.NewNop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&d)
	}
	if d.metrics == nil {
		d.metrics = metrics.NewNop()
	}
	return d
}
