package scheduler

import (
	"context"
	"fmt"

	"travel_backoffice/platform/apperr"
	"travel_backoffice/platform/config"
	"travel_backoffice/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
)

// TotalRecomputer recomputes and stores a quotation total.
type TotalRecomputer interface {
	RefreshTotal(ctx context.Context, quotationID uuid.UUID) (decimal.Decimal, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	totals *refreshTotalHandler
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, log *logger.Logger) (*Worker, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		totals: &refreshTotalHandler{log: log},
		log:    log,
	}

	mux.HandleFunc(TaskQuotesRefreshTotal, w.totals.ProcessTask)

	return w, nil
}

// SetTotalRecomputer sets the quotes service used by refresh-total tasks.
func (w *Worker) SetTotalRecomputer(totals TotalRecomputer) {
	w.totals.totals = totals
}

func (w *Worker) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

type refreshTotalHandler struct {
	totals TotalRecomputer
	log    *logger.Logger
}

func (h *refreshTotalHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	if h.totals == nil {
		return fmt.Errorf("refresh total: no recomputer configured")
	}

	payload, err := ParseRefreshTotalPayload(task)
	if err != nil {
		return fmt.Errorf("refresh total: %v: %w", err, asynq.SkipRetry)
	}

	quotationID, err := uuid.Parse(payload.QuotationID)
	if err != nil {
		return fmt.Errorf("refresh total: invalid quotation id: %w", asynq.SkipRetry)
	}

	total, err := h.totals.RefreshTotal(ctx, quotationID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			h.log.Info("quotation gone before total refresh", "quotationId", quotationID)
			return nil
		}
		return err
	}

	h.log.Info("quotation total refreshed", "quotationId", quotationID, "total", total.StringFixed(2))
	return nil
}
