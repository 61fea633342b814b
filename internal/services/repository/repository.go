package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"travel_backoffice/platform/apperr"
)

const (
	providerNotFoundMessage = "provider not found"
	serviceNotFoundMessage  = "service not found"
	pgForeignKeyViolation   = "23503"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new service directory repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ── Providers ─────────────────────────────────────────────────────────────────

// CreateProvider inserts a provider.
func (r *Repo) CreateProvider(ctx context.Context, params CreateProviderParams) (Provider, error) {
	query := `
		INSERT INTO providers (id, name, city, phone, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, city, phone, email, created_at`

	var p Provider
	err := r.pool.QueryRow(ctx, query, uuid.New(), params.Name, params.City, params.Phone, params.Email).Scan(
		&p.ID, &p.Name, &p.City, &p.Phone, &p.Email, &p.CreatedAt,
	)
	if err != nil {
		return Provider{}, fmt.Errorf("create provider: %w", err)
	}
	return p, nil
}

// GetProvider retrieves a provider by ID.
func (r *Repo) GetProvider(ctx context.Context, id uuid.UUID) (Provider, error) {
	query := `SELECT id, name, city, phone, email, created_at FROM providers WHERE id = $1`

	var p Provider
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.City, &p.Phone, &p.Email, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Provider{}, apperr.NotFound(providerNotFoundMessage)
		}
		return Provider{}, fmt.Errorf("get provider: %w", err)
	}
	return p, nil
}

// ListProviders retrieves all providers ordered by name.
func (r *Repo) ListProviders(ctx context.Context) ([]Provider, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, city, phone, email, created_at FROM providers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	var providers []Provider
	for rows.Next() {
		var p Provider
		if err := rows.Scan(&p.ID, &p.Name, &p.City, &p.Phone, &p.Email, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate providers: %w", err)
	}
	return providers, nil
}

// DeleteProvider removes a provider that offers no services.
func (r *Repo) DeleteProvider(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM providers WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.Conflict("provider still offers services")
		}
		return fmt.Errorf("delete provider: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(providerNotFoundMessage)
	}
	return nil
}

// ── Services ──────────────────────────────────────────────────────────────────

const serviceColumns = `
	s.id, s.provider_id, s.city, s.service_type, s.name, s.description, s.night_count, s.room_type,
	COALESCE((
		SELECT array_agg(to_char(st.offered_at, 'HH24:MI') ORDER BY st.offered_at)
		FROM service_times st WHERE st.service_id = s.id
	), '{}'),
	s.created_at, s.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanService(row rowScanner) (Service, error) {
	var s Service
	err := row.Scan(
		&s.ID, &s.ProviderID, &s.City, &s.ServiceType, &s.Name, &s.Description, &s.NightCount, &s.RoomType,
		&s.Times, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// GetService retrieves a service by ID.
func (r *Repo) GetService(ctx context.Context, id uuid.UUID) (Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services s WHERE s.id = $1`

	s, err := scanService(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Service{}, apperr.NotFound(serviceNotFoundMessage)
		}
		return Service{}, fmt.Errorf("get service: %w", err)
	}
	return s, nil
}

// GetServices retrieves the services with the given IDs. Unknown IDs are skipped.
func (r *Repo) GetServices(ctx context.Context, ids []uuid.UUID) ([]Service, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+serviceColumns+` FROM services s WHERE s.id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get services: %w", err)
	}
	defer rows.Close()
	return collectServices(rows)
}

// ListServices retrieves services matching the filter, ordered by city and name.
func (r *Repo) ListServices(ctx context.Context, params ListParams) ([]Service, int, error) {
	var typeParam, cityParam, searchParam, providerParam interface{}
	if params.ServiceType != "" {
		typeParam = params.ServiceType
	}
	if params.City != "" {
		cityParam = params.City
	}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}
	if params.ProviderID != nil {
		providerParam = *params.ProviderID
	}

	where := `
		WHERE ($1::text IS NULL OR lower(s.service_type) = lower($1))
			AND ($2::text IS NULL OR lower(s.city) = lower($2))
			AND ($3::text IS NULL OR s.name ILIKE $3)
			AND ($4::uuid IS NULL OR s.provider_id = $4)`
	args := []interface{}{typeParam, cityParam, searchParam, providerParam}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM services s`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count services: %w", err)
	}

	query := `SELECT ` + serviceColumns + ` FROM services s` + where + `
		ORDER BY s.city ASC, s.name ASC
		LIMIT $5 OFFSET $6`
	args = append(args, params.Limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	items, err := collectServices(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func collectServices(rows pgx.Rows) ([]Service, error) {
	var items []Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return items, nil
}

// CreateService inserts a service and its offered times in one transaction.
func (r *Repo) CreateService(ctx context.Context, params ServiceParams) (Service, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Service{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO services (id, provider_id, city, service_type, name, description, night_count, room_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.Exec(ctx, query,
		params.ID, params.ProviderID, params.City, params.ServiceType, params.Name, params.Description, params.NightCount, params.RoomType,
	); err != nil {
		if isForeignKeyViolation(err) {
			return Service{}, apperr.NotFound(providerNotFoundMessage)
		}
		return Service{}, fmt.Errorf("create service: %w", err)
	}

	if err := replaceTimes(ctx, tx, params.ID, params.Times); err != nil {
		return Service{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Service{}, fmt.Errorf("commit service: %w", err)
	}
	return r.GetService(ctx, params.ID)
}

// UpdateService replaces a service's fields and offered times.
func (r *Repo) UpdateService(ctx context.Context, params ServiceParams) (Service, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Service{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE services SET provider_id = $2, city = $3, service_type = $4, name = $5, description = $6,
			night_count = $7, room_type = $8, updated_at = now()
		WHERE id = $1`
	result, err := tx.Exec(ctx, query,
		params.ID, params.ProviderID, params.City, params.ServiceType, params.Name, params.Description, params.NightCount, params.RoomType,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return Service{}, apperr.NotFound(providerNotFoundMessage)
		}
		return Service{}, fmt.Errorf("update service: %w", err)
	}
	if result.RowsAffected() == 0 {
		return Service{}, apperr.NotFound(serviceNotFoundMessage)
	}

	if err := replaceTimes(ctx, tx, params.ID, params.Times); err != nil {
		return Service{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Service{}, fmt.Errorf("commit service: %w", err)
	}
	return r.GetService(ctx, params.ID)
}

func replaceTimes(ctx context.Context, tx pgx.Tx, serviceID uuid.UUID, times []string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM service_times WHERE service_id = $1`, serviceID); err != nil {
		return fmt.Errorf("clear service times: %w", err)
	}
	for _, t := range times {
		if _, err := tx.Exec(ctx, `INSERT INTO service_times (service_id, offered_at) VALUES ($1, $2::time)`, serviceID, t); err != nil {
			return fmt.Errorf("insert service time: %w", err)
		}
	}
	return nil
}

// DeleteService removes a service that no quotation uses.
func (r *Repo) DeleteService(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperr.Conflict("service is used by a quotation")
		}
		return fmt.Errorf("delete service: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(serviceNotFoundMessage)
	}
	return nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}
