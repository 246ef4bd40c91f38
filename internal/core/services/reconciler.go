package services

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/eventtribe/ticketing/internal/core/domain"
	"github.com/eventtribe/ticketing/internal/core/ports"
)

type ReconcilerConfig struct {
	Interval time.Duration
	After    time.Duration
	Batch    int
}

// Reconciler resolves bookings whose STK Push was accepted but whose callback
// never arrived or could not be applied, by asking the provider directly.
type Reconciler struct {
	bookings  ports.BookingRepository
	gateway   ports.PaymentGateway
	callbacks *CallbackService
	cfg       ReconcilerConfig
	deps
}

func NewReconciler(bookings ports.BookingRepository, gateway ports.PaymentGateway, callbacks *CallbackService, cfg ReconcilerConfig, opts ...Option) *Reconciler {
	if cfg.Batch <= 0 {
		cfg.Batch = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	return &Reconciler{
		bookings:  bookings,
		gateway:   gateway,
		callbacks: callbacks,
		cfg:       cfg,
		deps:      newDeps(opts),
	}
}

func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.log.Info("Payment reconciler started",
		zap.Duration("interval", r.cfg.Interval),
		zap.Duration("after", r.cfg.After),
	)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Payment reconciler stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep examines one batch of unresolved payments and returns how many were
// moved to a terminal status.
func (r *Reconciler) Sweep(ctx context.Context) int {
	pending, err := r.bookings.ListUnresolvedPayments(ctx, r.now().Add(-r.cfg.After), r.cfg.Batch)
	if err != nil {
		r.log.Error("Failed to list unresolved payments", zap.Error(err))
		return 0
	}

	if len(pending) == 0 {
		return 0
	}

	r.log.Info("Reconciling unresolved payments", zap.Int("count", len(pending)))

	resolved := 0
	for _, p := range pending {
		if ctx.Err() != nil {
			break
		}

		log := r.log.With(
			zap.String("booking_id", p.BookingID),
			zap.String("checkout_request_id", p.CheckoutRequestID),
		)

		status, err := r.gateway.QuerySTKPush(ctx, p.CheckoutRequestID)
		if err != nil {
			if errors.Is(err, ports.ErrPaymentStillProcessing) {
				r.metrics.Reconciliations.WithLabelValues("still_processing").Inc()
				continue
			}
			log.Warn("STK Push status query failed", zap.Error(err))
			r.metrics.Reconciliations.WithLabelValues("query_error").Inc()
			continue
		}

		outcome, err := r.callbacks.Resolve(ctx, domain.PaymentResult{
			ResultCode:        status.ResultCode,
			ResultDesc:        status.ResultDesc,
			BookingID:         p.BookingID,
			CheckoutRequestID: p.CheckoutRequestID,
		})
		r.metrics.Reconciliations.WithLabelValues(string(outcome)).Inc()
		if err != nil {
			log.Warn("Failed to apply reconciled payment result", zap.Error(err))
			continue
		}

		if outcome == OutcomeCompleted || outcome == OutcomeFailed {
			log.Info("Payment reconciled", zap.String("outcome", string(outcome)))
			resolved++
		}
	}

	return resolved
}
