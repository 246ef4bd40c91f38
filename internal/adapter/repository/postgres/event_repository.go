package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// CanManageEvent reports whether userID organizes eventID or holds the admin role.
func (r *EventRepository) CanManageEvent(ctx context.Context, eventID string, userID string) (bool, error) {
	query := `
	SELECT EXISTS (
		SELECT 1 FROM events WHERE id = $1 AND organizer_id = $2
	) OR EXISTS (
		SELECT 1 FROM user_roles WHERE user_id = $2 AND role = 'admin'
	)
	`

	var ok bool
	if err := r.db.QueryRowContext(ctx, query, eventID, userID).Scan(&ok); err != nil {
		if isInvalidID(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check access to event %s: %w", eventID, err)
	}

	return ok, nil
}
