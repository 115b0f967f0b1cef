// Package capsules provides the capsule store: the repository interface the
// services depend on, and its PostgreSQL implementation.
package capsules

import (
	"context"
	"time"

	"github.com/echi/timecapsule/internal/server/models"
)

// Repository is the narrow capsule-store interface consumed by the creation,
// view and sweep services.
type Repository interface {
	// Insert persists a new capsule record.
	Insert(ctx context.Context, c *models.Capsule) error

	// GetByID returns the capsule with the given id, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Capsule, error)

	// SelectDueUndelivered returns every capsule whose delivery date is on
	// or before asOf's calendar date and which has not been delivered yet.
	SelectDueUndelivered(ctx context.Context, asOf time.Time) ([]*models.Capsule, error)

	// MarkDelivered flips the delivered flag to true. It is idempotent:
	// marking an already-delivered capsule succeeds without error.
	MarkDelivered(ctx context.Context, id string) error
}
