package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel_backoffice/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Quotation is the database model for a quotation header
type Quotation struct {
	ID          uuid.UUID       `db:"id"`
	Code        string          `db:"code"`
	ClientName  string          `db:"client_name"`
	TravelStart *time.Time      `db:"travel_start"`
	Pax         int             `db:"pax"`
	Status      string          `db:"status"`
	Total       decimal.Decimal `db:"total"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

// ListParams contains parameters for listing quotations
type ListParams struct {
	Status    *string
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PageSize  int
}

// ListResult contains the paginated result of listing quotations
type ListResult struct {
	Items      []Quotation
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ── Repository ────────────────────────────────────────────────────────────────

const quotationNotFoundMsg = "quotation not found"

// Repository provides database operations for quotations and their items
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotations repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NextCode atomically generates the next quotation code for the current year
func (r *Repository) NextCode(ctx context.Context) (string, error) {
	year := time.Now().Year()

	var nextNum int
	query := `
		INSERT INTO quotation_counters (year, last_number)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_number = quotation_counters.last_number + 1
		RETURNING last_number`

	if err := r.pool.QueryRow(ctx, query, year).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("failed to generate quotation code: %w", err)
	}

	return fmt.Sprintf("COT-%d-%04d", year, nextNum), nil
}

// Create inserts a quotation header
func (r *Repository) Create(ctx context.Context, q *Quotation) error {
	query := `
		INSERT INTO quotations (id, code, client_name, travel_start, pax, status, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9)`

	if _, err := r.pool.Exec(ctx, query,
		q.ID, q.Code, q.ClientName, q.TravelStart, q.Pax, q.Status, q.Total.String(), q.CreatedAt, q.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert quotation: %w", err)
	}
	return nil
}

// Update writes the editable header fields
func (r *Repository) Update(ctx context.Context, q *Quotation) error {
	query := `
		UPDATE quotations SET client_name = $2, travel_start = $3, pax = $4, status = $5, updated_at = $6
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, q.ID, q.ClientName, q.TravelStart, q.Pax, q.Status, q.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update quotation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quotationNotFoundMsg)
	}
	return nil
}

// UpdateTotal stores a recomputed total on the header
func (r *Repository) UpdateTotal(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	query := `UPDATE quotations SET total = $2::numeric, updated_at = $3 WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id, total.StringFixed(2), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update quotation total: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quotationNotFoundMsg)
	}
	return nil
}

const quotationColumns = `id, code, client_name, travel_start, pax, status, total::text, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuotation(row rowScanner) (Quotation, error) {
	var (
		q     Quotation
		total string
	)
	if err := row.Scan(&q.ID, &q.Code, &q.ClientName, &q.TravelStart, &q.Pax, &q.Status, &total, &q.CreatedAt, &q.UpdatedAt); err != nil {
		return Quotation{}, err
	}
	parsed, err := decimal.NewFromString(total)
	if err != nil {
		return Quotation{}, fmt.Errorf("failed to parse quotation total: %w", err)
	}
	q.Total = parsed
	return q, nil
}

// GetByID retrieves a quotation header by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Quotation, error) {
	query := `SELECT ` + quotationColumns + ` FROM quotations WHERE id = $1`

	q, err := scanQuotation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quotationNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}
	return &q, nil
}

// Delete removes a quotation (cascade deletes items)
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM quotations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quotation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(quotationNotFoundMsg)
	}
	return nil
}

// List retrieves quotations with filtering and pagination
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	sortBy, err := resolveSortBy(params.SortBy)
	if err != nil {
		return nil, err
	}
	sortOrder, err := resolveSortOrder(params.SortOrder)
	if err != nil {
		return nil, err
	}

	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}

	var statusParam interface{}
	if params.Status != nil {
		statusParam = *params.Status
	}

	baseQuery := `
		FROM quotations
		WHERE ($1::text IS NULL OR status = $1)
			AND ($2::text IS NULL OR code ILIKE $2 OR client_name ILIKE $2)
	`
	args := []interface{}{statusParam, searchParam}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count quotations: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	offset := (params.Page - 1) * params.PageSize

	selectQuery := `
		SELECT ` + quotationColumns + `
		` + baseQuery + `
		ORDER BY
			CASE WHEN $3 = 'code' AND $4 = 'asc' THEN code END ASC,
			CASE WHEN $3 = 'code' AND $4 = 'desc' THEN code END DESC,
			CASE WHEN $3 = 'clientName' AND $4 = 'asc' THEN client_name END ASC,
			CASE WHEN $3 = 'clientName' AND $4 = 'desc' THEN client_name END DESC,
			CASE WHEN $3 = 'travelStart' AND $4 = 'asc' THEN travel_start END ASC,
			CASE WHEN $3 = 'travelStart' AND $4 = 'desc' THEN travel_start END DESC,
			CASE WHEN $3 = 'total' AND $4 = 'asc' THEN total END ASC,
			CASE WHEN $3 = 'total' AND $4 = 'desc' THEN total END DESC,
			CASE WHEN $3 = 'createdAt' AND $4 = 'asc' THEN created_at END ASC,
			CASE WHEN $3 = 'createdAt' AND $4 = 'desc' THEN created_at END DESC,
			created_at DESC
		LIMIT $5 OFFSET $6`

	args = append(args, sortBy, sortOrder, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotations: %w", err)
	}
	defer rows.Close()

	var items []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quotation: %w", err)
		}
		items = append(items, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotations: %w", err)
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

func resolveSortBy(sortBy string) (string, error) {
	if sortBy == "" {
		return "createdAt", nil
	}
	switch sortBy {
	case "code", "clientName", "travelStart", "total", "createdAt":
		return sortBy, nil
	default:
		return "", apperr.BadRequest("invalid sort field")
	}
}

func resolveSortOrder(sortOrder string) (string, error) {
	if sortOrder == "" {
		return "desc", nil
	}
	switch sortOrder {
	case "asc", "desc":
		return sortOrder, nil
	default:
		return "", apperr.BadRequest("invalid sort order")
	}
}
