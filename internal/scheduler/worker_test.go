package scheduler

import (
	"context"
	"errors"
	"testing"

	"travel_backoffice/platform/apperr"
	"travel_backoffice/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

type fakeTotals struct {
	calls []uuid.UUID
	err   error
}

func (f *fakeTotals) RefreshTotal(_ context.Context, id uuid.UUID) (decimal.Decimal, error) {
	f.calls = append(f.calls, id)
	return decimal.NewFromInt(150), f.err
}

func TestRefreshTotalTaskRoundTrip(t *testing.T) {
	id := uuid.New()
	task, err := NewRefreshTotalTask(RefreshTotalPayload{QuotationID: id.String()})
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	if task.Type() != TaskQuotesRefreshTotal {
		t.Fatalf("unexpected type %s", task.Type())
	}

	totals := &fakeTotals{}
	h := &refreshTotalHandler{totals: totals, log: logger.Nop()}
	if err := h.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("process: %v", err)
	}
	if len(totals.calls) != 1 || totals.calls[0] != id {
		t.Fatalf("unexpected calls %v", totals.calls)
	}
}

func TestRefreshTotalSkipsRetryOnBadPayload(t *testing.T) {
	h := &refreshTotalHandler{totals: &fakeTotals{}, log: logger.Nop()}

	err := h.ProcessTask(context.Background(), asynq.NewTask(TaskQuotesRefreshTotal, []byte(`{"quotationId":"nope"}`)))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}

	err = h.ProcessTask(context.Background(), asynq.NewTask(TaskQuotesRefreshTotal, []byte(`not json`)))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
}

func TestRefreshTotalOutcomes(t *testing.T) {
	task, _ := NewRefreshTotalTask(RefreshTotalPayload{QuotationID: uuid.NewString()})

	gone := &refreshTotalHandler{totals: &fakeTotals{err: apperr.NotFound("quotation not found")}, log: logger.Nop()}
	if err := gone.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("deleted quotation should not be retried, got %v", err)
	}

	failing := &refreshTotalHandler{totals: &fakeTotals{err: errors.New("db down")}, log: logger.Nop()}
	if err := failing.ProcessTask(context.Background(), task); err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected a retryable error, got %v", err)
	}

	unbound := &refreshTotalHandler{log: logger.Nop()}
	if err := unbound.ProcessTask(context.Background(), task); err == nil {
		t.Fatal("expected error without recomputer")
	}
}
