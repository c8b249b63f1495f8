package jobs

import (
	"context"

	"github.com/hibiken/asynq"

	"github.com/brightcart/storefront-backend/internal/observability"
)

// Client submits jobs to the queue. It satisfies
// service.FulfillmentScheduler so the order service never sees asynq
// directly.
type Client struct {
	client *asynq.Client
}

func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

func (c *Client) EnqueueFulfillment(ctx context.Context, orderID uint) error {
	task, err := NewOrderFulfillTask(orderID)
	if err != nil {
		observability.RecordJobEvent(ctx, TaskOrderFulfill, "enqueue_error")
		return err
	}
	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(5)); err != nil {
		observability.RecordJobEvent(ctx, TaskOrderFulfill, "enqueue_error")
		return err
	}
	observability.RecordJobEvent(ctx, TaskOrderFulfill, "enqueued")
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
