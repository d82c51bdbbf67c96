package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-api/internal/model"
	"github.com/fairyhunter13/coupon-api/internal/service"
	"github.com/fairyhunter13/coupon-api/pkg/database"
)

const (
	uniqueViolation = "23505"
	primaryKeyName  = "coupons_pkey"

	// insertAttempts bounds retries when two inserts race for the same max(id)+1.
	insertAttempts = 3
)

// Schema creates the coupons table. Name uniqueness is case-insensitive via the lower(name) index.
const Schema = `
	CREATE TABLE IF NOT EXISTS coupons (
		id INTEGER PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		percent INTEGER NOT NULL CHECK (percent BETWEEN 1 AND 100),
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		created TIMESTAMP WITH TIME ZONE NOT NULL,
		last_updated TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS coupons_name_lower_key ON coupons (lower(name));
`

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	database.Querier
	Ping(ctx context.Context) error
}

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom pool interface.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// Ping checks that the database is reachable.
func (r *CouponRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// EnsureSchema creates the coupons table and indexes if they do not exist.
func (r *CouponRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SeedIfEmpty inserts the given coupons, keeping their ids, when the table has no rows.
func (r *CouponRepository) SeedIfEmpty(ctx context.Context, coupons []model.Coupon) error {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM coupons`).Scan(&count); err != nil {
		return fmt.Errorf("count coupons: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, c := range coupons {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO coupons (id, name, percent, is_active, created, last_updated)
			 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING`,
			c.ID, c.Name, c.Percent, c.IsActive, c.Created, c.LastUpdated)
		if err != nil {
			return fmt.Errorf("seed coupon %s: %w", c.Name, err)
		}
	}
	log.Info().Int("count", len(coupons)).Msg("seeded coupons table")
	return nil
}

// List returns all coupons ordered by id. Ids grow monotonically, so this is insertion order.
func (r *CouponRepository) List(ctx context.Context) ([]model.Coupon, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, percent, is_active, created, last_updated FROM coupons ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	coupons := []model.Coupon{}
	for rows.Next() {
		var c model.Coupon
		if err := rows.Scan(&c.ID, &c.Name, &c.Percent, &c.IsActive, &c.Created, &c.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coupons: %w", err)
	}
	return coupons, nil
}

// GetByID retrieves a coupon by id.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByID(ctx context.Context, id int) (*model.Coupon, error) {
	query := `SELECT id, name, percent, is_active, created, last_updated FROM coupons WHERE id = $1`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get coupon by id %d: %w", id, err)
	}
	return coupon, nil
}

// GetByName retrieves a coupon by name, ignoring case.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByName(ctx context.Context, name string) (*model.Coupon, error) {
	query := `SELECT id, name, percent, is_active, created, last_updated FROM coupons WHERE lower(name) = lower($1)`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("get coupon by name %s: %w", name, err)
	}
	return coupon, nil
}

// Insert inserts a new coupon with id = max(id) + 1 and writes the id back.
// Returns service.ErrCouponExists if a coupon with the same name already exists.
func (r *CouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	query := `INSERT INTO coupons (id, name, percent, is_active, created, last_updated)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5 FROM coupons
		RETURNING id`

	var err error
	for attempt := 0; attempt < insertAttempts; attempt++ {
		err = r.pool.QueryRow(ctx, query,
			coupon.Name, coupon.Percent, coupon.IsActive, coupon.Created, coupon.LastUpdated,
		).Scan(&coupon.ID)
		if err == nil {
			return nil
		}

		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
			return fmt.Errorf("insert coupon: %w", err)
		}
		if pgErr.ConstraintName != primaryKeyName {
			return service.ErrCouponExists
		}
		log.Debug().Int("attempt", attempt+1).Str("coupon_name", coupon.Name).Msg("coupon id collision, retrying")
	}
	return fmt.Errorf("insert coupon after %d attempts: %w", insertAttempts, err)
}

// Update replaces name, percent, is_active and last_updated for the coupon's id
// and writes the stored created timestamp back.
// Returns service.ErrCouponNotFound or service.ErrCouponConflict.
func (r *CouponRepository) Update(ctx context.Context, coupon *model.Coupon) error {
	query := `UPDATE coupons SET name = $2, percent = $3, is_active = $4, last_updated = $5
		WHERE id = $1 RETURNING created`

	err := r.pool.QueryRow(ctx, query,
		coupon.ID, coupon.Name, coupon.Percent, coupon.IsActive, coupon.LastUpdated,
	).Scan(&coupon.Created)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return service.ErrCouponNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return service.ErrCouponConflict
		}
		return fmt.Errorf("update coupon %d: %w", coupon.ID, err)
	}
	return nil
}

// Delete removes the coupon with the given id, reporting whether a row was deleted.
func (r *CouponRepository) Delete(ctx context.Context, id int) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete coupon %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(&c.ID, &c.Name, &c.Percent, &c.IsActive, &c.Created, &c.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, err
	}
	return &c, nil
}
