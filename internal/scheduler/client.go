package scheduler

import (
	"context"
	"time"

	"travel_backoffice/platform/cache"
	"travel_backoffice/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	refreshTotalMaxRetry = 5
	refreshTotalTimeout  = 30 * time.Second
)

type Client struct {
	client *asynq.Client
	queue  string
}

// NewClient creates a task client. It satisfies the editor's total
// refresher so stored totals are recomputed off the request path.
func NewClient(cfg config.SchedulerConfig) (*Client, error) {
	opt, err := redisClientOpt(cfg)
	if err != nil {
		return nil, err
	}

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queueName(cfg),
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueRefreshTotal schedules recomputation of a quotation's stored total.
func (c *Client) EnqueueRefreshTotal(ctx context.Context, quotationID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewRefreshTotalTask(RefreshTotalPayload{QuotationID: quotationID.String()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.MaxRetry(refreshTotalMaxRetry),
		asynq.Timeout(refreshTotalTimeout),
	)
	return err
}

func redisClientOpt(cfg config.SchedulerConfig) (asynq.RedisClientOpt, error) {
	opt, err := cache.Options(cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

func queueName(cfg config.SchedulerConfig) string {
	if queue := cfg.GetAsynqQueueName(); queue != "" {
		return queue
	}
	return "default"
}
