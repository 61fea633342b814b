package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel_backoffice/internal/quotes/sequencer"
	"travel_backoffice/platform/apperr"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const itemNotFoundMsg = "quotation item not found"

// itemSelect resolves city and type from the service and prices the item
// from the grid at its scheduled month. Lodging prices are per night.
// Older clients wrote nights instead of night_count, sometimes as 0.
const itemSelect = `
	SELECT qi.id, qi.service_id, s.city, s.service_type, qi.scheduled_date,
		COALESCE(qi.night_count, NULLIF(GREATEST(qi.nights, 0), 0)), qi.is_optional, COALESCE(qi.display_text, ''),
		(
			SELECT (pg.price * COALESCE(qi.night_count, NULLIF(GREATEST(qi.nights, 0), 0), 1))::text
			FROM price_grid pg
			WHERE pg.service_id = qi.service_id
				AND pg.room_type = COALESCE(s.room_type, '')
				AND pg.year = EXTRACT(YEAR FROM qi.scheduled_date)::int
				AND pg.month = EXTRACT(MONTH FROM qi.scheduled_date)::int
			ORDER BY pg.category
			LIMIT 1
		)
	FROM quotation_items qi
	JOIN services s ON s.id = qi.service_id`

func scanItem(row rowScanner) (sequencer.Item, error) {
	var (
		it        sequencer.Item
		scheduled time.Time
		nights    *int
		price     *string
	)
	if err := row.Scan(
		&it.ID, &it.ServiceRef, &it.City, &it.ServiceTypeLabel, &scheduled,
		&nights, &it.IsOptional, &it.DisplayText, &price,
	); err != nil {
		return sequencer.Item{}, err
	}
	it.ScheduledDate = civil.DateOf(scheduled)
	if nights != nil && *nights >= 1 {
		it.NightCount = nights
	}
	if price != nil {
		d, err := decimal.NewFromString(*price)
		if err != nil {
			return sequencer.Item{}, fmt.Errorf("failed to parse item price: %w", err)
		}
		it.Price = decimal.NewNullDecimal(d)
	}
	return it, nil
}

// FetchItems returns the quotation's items ordered by position
func (r *Repository) FetchItems(ctx context.Context, quotationID uuid.UUID) ([]sequencer.Item, error) {
	if err := r.ensureQuotation(ctx, quotationID); err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, itemSelect+`
	WHERE qi.quotation_id = $1
	ORDER BY qi.position ASC, qi.created_at ASC`, quotationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotation items: %w", err)
	}
	defer rows.Close()

	var items []sequencer.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quotation item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotation items: %w", err)
	}
	return items, nil
}

func (r *Repository) ensureQuotation(ctx context.Context, quotationID uuid.UUID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quotations WHERE id = $1)`, quotationID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check quotation: %w", err)
	}
	if !exists {
		return apperr.NotFound(quotationNotFoundMsg)
	}
	return nil
}

// InsertItem appends an item after the current last position and returns
// it as stored, price included.
func (r *Repository) InsertItem(ctx context.Context, quotationID uuid.UUID, item sequencer.Item) (sequencer.Item, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return sequencer.Item{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the header so concurrent appends get distinct positions.
	var locked uuid.UUID
	if err := tx.QueryRow(ctx, `SELECT id FROM quotations WHERE id = $1 FOR UPDATE`, quotationID).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sequencer.Item{}, apperr.NotFound(quotationNotFoundMsg)
		}
		return sequencer.Item{}, fmt.Errorf("failed to lock quotation: %w", err)
	}

	var displayText *string
	if item.DisplayText != "" {
		displayText = &item.DisplayText
	}

	id := uuid.New()
	query := `
		INSERT INTO quotation_items (id, quotation_id, service_id, scheduled_date, night_count, position, is_optional, display_text)
		SELECT $1, $2, $3, $4, $5, COALESCE(MAX(position), 0) + 1, $6, $7
		FROM quotation_items WHERE quotation_id = $2`

	if _, err := tx.Exec(ctx, query,
		id, quotationID, item.ServiceRef, dateValue(item.ScheduledDate), item.NightCount, item.IsOptional, displayText,
	); err != nil {
		return sequencer.Item{}, fmt.Errorf("failed to insert quotation item: %w", err)
	}

	stored, err := scanItem(tx.QueryRow(ctx, itemSelect+` WHERE qi.id = $1`, id))
	if err != nil {
		return sequencer.Item{}, fmt.Errorf("failed to read inserted item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return sequencer.Item{}, fmt.Errorf("failed to commit item insert: %w", err)
	}
	return stored, nil
}

// UpdateItemDate sets an item's scheduled date and returns its price at
// the new date
func (r *Repository) UpdateItemDate(ctx context.Context, itemID uuid.UUID, date civil.Date) (decimal.NullDecimal, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `UPDATE quotation_items SET scheduled_date = $2 WHERE id = $1`, itemID, dateValue(date))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("failed to update item date: %w", err)
	}
	if result.RowsAffected() == 0 {
		return decimal.NullDecimal{}, apperr.NotFound(itemNotFoundMsg)
	}

	stored, err := scanItem(tx.QueryRow(ctx, itemSelect+` WHERE qi.id = $1`, itemID))
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("failed to read repriced item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("failed to commit item date: %w", err)
	}
	return stored.Price, nil
}

// ReorderItems writes every position in one transaction
func (r *Repository) ReorderItems(ctx context.Context, quotationID uuid.UUID, positions []sequencer.Position) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, p := range positions {
		batch.Queue(`UPDATE quotation_items SET position = $3 WHERE id = $1 AND quotation_id = $2`, p.ItemID, quotationID, p.Position)
	}
	results := tx.SendBatch(ctx, batch)
	for range positions {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to update item position: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to close reorder batch: %w", err)
	}

	return tx.Commit(ctx)
}

// DeleteItem removes an item and closes the gap it leaves in the positions
func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		quotationID uuid.UUID
		position    int
	)
	err = tx.QueryRow(ctx, `DELETE FROM quotation_items WHERE id = $1 RETURNING quotation_id, position`, itemID).Scan(&quotationID, &position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(itemNotFoundMsg)
		}
		return fmt.Errorf("failed to delete quotation item: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE quotation_items SET position = position - 1 WHERE quotation_id = $1 AND position > $2`,
		quotationID, position,
	); err != nil {
		return fmt.Errorf("failed to compact item positions: %w", err)
	}

	return tx.Commit(ctx)
}

func dateValue(d civil.Date) time.Time {
	return d.In(time.UTC)
}
