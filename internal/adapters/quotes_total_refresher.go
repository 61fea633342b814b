package adapters

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"travel_backoffice/internal/quotes/editor"
)

// TotalRecomputer recomputes and stores a quotation total.
type TotalRecomputer interface {
	RefreshTotal(ctx context.Context, quotationID uuid.UUID) (decimal.Decimal, error)
}

// InlineTotalRefresher recomputes totals in the caller's goroutine. It is
// used when no task queue is configured. Totals is set once the quotes
// module exists.
type InlineTotalRefresher struct {
	Totals TotalRecomputer
}

var _ editor.TotalRefresher = (*InlineTotalRefresher)(nil)

// EnqueueRefreshTotal recomputes the total of quotationID immediately.
func (a *InlineTotalRefresher) EnqueueRefreshTotal(ctx context.Context, quotationID uuid.UUID) error {
	if a.Totals == nil {
		return fmt.Errorf("total refresher not bound")
	}
	_, err := a.Totals.RefreshTotal(ctx, quotationID)
	return err
}
