package capsules

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/echi/timecapsule/internal/common"
	"github.com/echi/timecapsule/internal/dbx"
	"github.com/echi/timecapsule/internal/server/models"
)

// PostgresRepository implements capsule storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, c *models.Capsule) error {
	images, err := json.Marshal(c.Images)
	if err != nil {
		return fmt.Errorf("images marshal error: %w", err)
	}

	query := `
		INSERT INTO capsules (id, message, recipient_email, delivery_date, images, delivered, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = r.db.ExecContext(ctx, query,
		c.ID, c.Message, c.RecipientEmail, c.DeliveryDate, images, c.Delivered, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Capsule, error) {
	query := `
		SELECT id, message, recipient_email, delivery_date, images, delivered, created_at
		FROM capsules WHERE id = $1;
	`
	row := r.db.QueryRowContext(ctx, query, id)

	c, err := scanCapsule(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) SelectDueUndelivered(ctx context.Context, asOf time.Time) ([]*models.Capsule, error) {
	query := `
		SELECT id, message, recipient_email, delivery_date, images, delivered, created_at
		FROM capsules WHERE delivery_date <= $1 AND NOT delivered;
	`
	rows, err := r.db.QueryContext(ctx, query, asOf.Format(time.DateOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to select due capsules: %w", err)
	}
	defer rows.Close()

	var result []*models.Capsule
	for rows.Next() {
		c, err := scanCapsule(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) MarkDelivered(ctx context.Context, id string) error {
	// No "AND NOT delivered" guard: marking an already-delivered capsule
	// must stay a no-op success so overlapping sweep runs cannot fail here.
	query := `UPDATE capsules SET delivered = true WHERE id = $1;`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanCapsule(scan func(dest ...any) error) (*models.Capsule, error) {
	var c models.Capsule
	var images []byte

	if err := scan(
		&c.ID, &c.Message, &c.RecipientEmail, &c.DeliveryDate,
		&images, &c.Delivered, &c.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(images, &c.Images); err != nil {
		return nil, fmt.Errorf("images unmarshal error: %w", err)
	}
	return &c, nil
}
