package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"travel_backoffice/platform/apperr"
)

// Entry is one enumerated value of a catalog group, such as a city or a
// service type.
type Entry struct {
	ID        uuid.UUID
	Group     string
	Value     string
	Label     string
	SortOrder int
}

// UpsertParams contains parameters for writing a catalog entry.
type UpsertParams struct {
	Group     string
	Value     string
	Label     string
	SortOrder int
}

// Repository provides catalog persistence.
type Repository interface {
	ListGroup(ctx context.Context, group string) ([]Entry, error)
	ListGroups(ctx context.Context) ([]string, error)
	Upsert(ctx context.Context, params UpsertParams) (Entry, error)
	Delete(ctx context.Context, group, value string) error
}

// Repo implements the catalog repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ListGroup returns the entries of group in display order.
func (r *Repo) ListGroup(ctx context.Context, group string) ([]Entry, error) {
	query := `
		SELECT id, group_key, value, label, sort_order
		FROM catalog_entries
		WHERE group_key = $1
		ORDER BY sort_order ASC, label ASC`

	rows, err := r.pool.Query(ctx, query, group)
	if err != nil {
		return nil, fmt.Errorf("list catalog group: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Group, &e.Value, &e.Label, &e.SortOrder); err != nil {
			return nil, fmt.Errorf("scan catalog entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog entries: %w", err)
	}
	return entries, nil
}

// ListGroups returns the distinct group keys.
func (r *Repo) ListGroups(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT group_key FROM catalog_entries ORDER BY group_key`)
	if err != nil {
		return nil, fmt.Errorf("list catalog groups: %w", err)
	}
	defer rows.Close()

	groups := make([]string, 0)
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("scan catalog group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog groups: %w", err)
	}
	return groups, nil
}

// Upsert creates the entry or replaces the label and sort order of an
// existing value.
func (r *Repo) Upsert(ctx context.Context, params UpsertParams) (Entry, error) {
	query := `
		INSERT INTO catalog_entries (id, group_key, value, label, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (group_key, value)
		DO UPDATE SET label = EXCLUDED.label, sort_order = EXCLUDED.sort_order
		RETURNING id, group_key, value, label, sort_order`

	var e Entry
	if err := r.pool.QueryRow(ctx, query, uuid.New(), params.Group, params.Value, params.Label, params.SortOrder).Scan(
		&e.ID, &e.Group, &e.Value, &e.Label, &e.SortOrder,
	); err != nil {
		return Entry{}, fmt.Errorf("upsert catalog entry: %w", err)
	}
	return e, nil
}

// Delete removes one value from a group.
func (r *Repo) Delete(ctx context.Context, group, value string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM catalog_entries WHERE group_key = $1 AND value = $2`, group, value)
	if err != nil {
		return fmt.Errorf("delete catalog entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("catalog entry not found")
	}
	return nil
}
