package repository

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"travel_backoffice/platform/apperr"
)

const serviceNotFoundMessage = "service not found"

// Entry is one cell of a service's price grid: the price of a category and
// room type in one month.
type Entry struct {
	ServiceID uuid.UUID
	Category  string
	RoomType  string
	Year      int
	Month     int
	Price     decimal.Decimal
}

// Repository provides price grid persistence.
type Repository interface {
	Upsert(ctx context.Context, serviceID uuid.UUID, entries []Entry) error
	Grid(ctx context.Context, serviceID uuid.UUID, year int) ([]Entry, error)
	Lookup(ctx context.Context, serviceID uuid.UUID, roomType string, date civil.Date) (decimal.NullDecimal, error)
}

// Repo implements Repository with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new price grid repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Upsert writes entries for serviceID in one transaction, replacing the
// price of cells that already exist.
func (r *Repo) Upsert(ctx context.Context, serviceID uuid.UUID, entries []Entry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists int
	if err := tx.QueryRow(ctx, `SELECT 1 FROM services WHERE id = $1 FOR SHARE`, serviceID).Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(serviceNotFoundMessage)
		}
		return fmt.Errorf("lock service: %w", err)
	}

	query := `
		INSERT INTO price_grid (service_id, category, room_type, year, month, price)
		VALUES ($1, $2, $3, $4, $5, $6::numeric)
		ON CONFLICT (service_id, category, room_type, year, month)
		DO UPDATE SET price = EXCLUDED.price, updated_at = now()`

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(query, serviceID, e.Category, e.RoomType, e.Year, e.Month, e.Price.String())
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert prices: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit prices: %w", err)
	}
	return nil
}

// Grid returns the entries of serviceID for year, ordered by category, room
// type and month.
func (r *Repo) Grid(ctx context.Context, serviceID uuid.UUID, year int) ([]Entry, error) {
	query := `
		SELECT service_id, category, room_type, year, month, price::text
		FROM price_grid
		WHERE service_id = $1 AND year = $2
		ORDER BY category, room_type, month`

	rows, err := r.pool.Query(ctx, query, serviceID, year)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var price string
		if err := rows.Scan(&e.ServiceID, &e.Category, &e.RoomType, &e.Year, &e.Month, &price); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		if e.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse price: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prices: %w", err)
	}
	return entries, nil
}

// Lookup returns the price of serviceID for roomType in the month of date.
// The first category wins when several match. The result is invalid when
// no cell matches.
func (r *Repo) Lookup(ctx context.Context, serviceID uuid.UUID, roomType string, date civil.Date) (decimal.NullDecimal, error) {
	query := `
		SELECT price::text FROM price_grid
		WHERE service_id = $1 AND room_type = $2 AND year = $3 AND month = $4
		ORDER BY category
		LIMIT 1`

	var price string
	err := r.pool.QueryRow(ctx, query, serviceID, roomType, date.Year, int(date.Month)).Scan(&price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.NullDecimal{}, nil
		}
		return decimal.NullDecimal{}, fmt.Errorf("lookup price: %w", err)
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("parse price: %w", err)
	}
	return decimal.NewNullDecimal(d), nil
}
