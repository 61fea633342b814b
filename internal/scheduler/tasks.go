package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskQuotesRefreshTotal = "quotes.refresh_total"

type RefreshTotalPayload struct {
	QuotationID string `json:"quotationId"`
}

func NewRefreshTotalTask(payload RefreshTotalPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQuotesRefreshTotal, data), nil
}

func ParseRefreshTotalPayload(task *asynq.Task) (RefreshTotalPayload, error) {
	var payload RefreshTotalPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return RefreshTotalPayload{}, err
	}
	return payload, nil
}
