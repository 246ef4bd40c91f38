package ports

import (
	"context"

	"github.com/eventtribe/ticketing/internal/core/domain"
)

type EventPublisher interface {
	Publish(ctx context.Context, evt domain.BookingEvent) error
}
