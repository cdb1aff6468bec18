package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"busreserve/models"

	"github.com/hibiken/asynq"
)

const TypeEventDelivery = "booking:event"

// QueueDispatcher hands events to the background worker, which retries delivery independently.
type QueueDispatcher struct {
	client *asynq.Client
}

func NewQueueDispatcher(client *asynq.Client) *QueueDispatcher {
	return &QueueDispatcher{client: client}
}

func (q *QueueDispatcher) Dispatch(ctx context.Context, event models.Event) error {
	task, err := NewEventDeliveryTask(event)
	if err != nil {
		return err
	}
	if _, err := q.client.EnqueueContext(ctx, task, asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("failed to enqueue event %s: %w", event.ID, err)
	}
	return nil
}

func NewEventDeliveryTask(event models.Event) (*asynq.Task, error) {
	b, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}
	return asynq.NewTask(TypeEventDelivery, b), nil
}

func ParseEventDeliveryTask(task *asynq.Task) (models.Event, error) {
	var event models.Event
	if err := json.Unmarshal(task.Payload(), &event); err != nil {
		return event, fmt.Errorf("invalid event payload: %w", err)
	}
	return event, nil
}
