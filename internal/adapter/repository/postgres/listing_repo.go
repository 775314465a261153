// Package postgres stores listings in PostgreSQL through database/sql and lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/Abdurahmanit/reusehub/internal/config"
	"github.com/Abdurahmanit/reusehub/internal/listing/domain"
	"github.com/Abdurahmanit/reusehub/internal/platform/logger"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS items (
	id             TEXT        PRIMARY KEY,
	title          TEXT        NOT NULL,
	description    TEXT        NOT NULL,
	category       TEXT        NOT NULL,
	condition      TEXT        NOT NULL,
	item_type      TEXT        NOT NULL,
	barter_wants   TEXT        NOT NULL DEFAULT '',
	contact_method TEXT        NOT NULL,
	contact_info   TEXT        NOT NULL,
	image_url      TEXT        NOT NULL DEFAULT '',
	status         TEXT        NOT NULL DEFAULT 'available',
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_items_category   ON items(category);
CREATE INDEX IF NOT EXISTS idx_items_item_type  ON items(item_type);
CREATE INDEX IF NOT EXISTS idx_items_status     ON items(status);
`

const selectColumns = `id, title, description, category, condition, item_type, barter_wants,
	contact_method, contact_info, image_url, status, created_at, updated_at`

// Open connects with retries and applies the schema.
func Open(ctx context.Context, cfg config.PostgresConfig, log *logger.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}
	delay := 500 * time.Millisecond
	for i := 1; i <= attempts; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		if i < attempts {
			log.Warn("PostgreSQL not ready, retrying", zap.Int("attempt", i), zap.Duration("delay", delay), zap.Error(err))
			select {
			case <-ctx.Done():
				_ = db.Close()
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, classify(fmt.Errorf("postgres: ping failed after %d attempts: %w", attempts, err))
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	log.Info("Connected to PostgreSQL and ensured schema")
	return db, nil
}

// classify marks connectivity failures as transient so callers may retry.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	var pqErr *pq.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
	case errors.As(err, &pqErr):
		switch pqErr.Code.Class() {
		case "08", "53", "57":
			return fmt.Errorf("%w: %v", domain.ErrTransientStore, err)
		}
	}
	return err
}

type ListingRepository struct {
	db     *sql.DB
	logger *logger.Logger
}

func NewListingRepository(db *sql.DB, log *logger.Logger) *ListingRepository {
	return &ListingRepository{db: db, logger: log.Named("PostgresListingRepository")}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var (
		l                                               domain.Listing
		category, condition, itemType, method, rawState string
	)
	err := row.Scan(&l.ID, &l.Title, &l.Description, &category, &condition, &itemType, &l.BarterWants,
		&method, &l.ContactInfo, &l.ImageURL, &rawState, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Category = domain.Category(category)
	l.Condition = domain.Condition(condition)
	l.ItemType = domain.ItemType(itemType)
	l.ContactMethod = domain.ContactMethod(method)
	l.Status = domain.ListingStatus(rawState)
	if parsed, ok := domain.ParseStatus(rawState); ok {
		l.Status = parsed
	}
	return &l, nil
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO items (`+selectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		l.ID, l.Title, l.Description, string(l.Category), string(l.Condition), string(l.ItemType), l.BarterWants,
		string(l.ContactMethod), l.ContactInfo, l.ImageURL, string(l.Status), l.CreatedAt.UTC(), l.UpdatedAt.UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: duplicate listing id %s", domain.ErrInvalidInput, l.ID)
		}
		r.logger.Error("Failed to insert listing", zap.String("listing_id", l.ID), zap.Error(err))
		return classify(fmt.Errorf("postgres: insert: %w", err))
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM items WHERE id = $1`, id)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to find listing", zap.String("listing_id", id), zap.Error(err))
		return nil, classify(fmt.Errorf("postgres: select: %w", err))
	}
	return l, nil
}

func (r *ListingRepository) List(ctx context.Context) ([]*domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM items ORDER BY created_at DESC, id DESC`)
	if err != nil {
		r.logger.Error("Failed to list listings", zap.Error(err))
		return nil, classify(fmt.Errorf("postgres: list: %w", err))
	}
	defer rows.Close()

	listings := make([]*domain.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, classify(fmt.Errorf("postgres: scan row: %w", err))
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("postgres: list rows: %w", err))
	}
	return listings, nil
}

// UpdateStatus applies the transition in a single conditional UPDATE so that
// concurrent writers cannot move a listing out of a terminal status.
func (r *ListingRepository) UpdateStatus(ctx context.Context, id string, status domain.ListingStatus, at time.Time) (*domain.Listing, error) {
	var from []string
	for _, s := range []domain.ListingStatus{domain.StatusAvailable, domain.StatusRehomed} {
		if s.CanTransitionTo(status) {
			from = append(from, string(s))
		}
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE items SET status = $2, updated_at = $3
		WHERE id = $1 AND status = ANY($4)
		RETURNING `+selectColumns,
		id, string(status), at.UTC(), pq.Array(from))
	l, err := scanListing(row)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		r.logger.Error("Failed to update listing status", zap.String("listing_id", id), zap.Error(err))
		return nil, classify(fmt.Errorf("postgres: update status: %w", err))
	}

	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, status)
}

func (r *ListingRepository) Ping(ctx context.Context) error {
	return classify(r.db.PingContext(ctx))
}
