package events

import (
	"context"
	"time"

	"kingsign-backend/internal/queue"
)

// QueuePublisher enqueues events as webhook jobs for the worker.
type QueuePublisher struct {
	Client queue.Client
	now    func() time.Time
}

// NewQueuePublisher constructs a QueuePublisher.
func NewQueuePublisher(client queue.Client) *QueuePublisher {
	return &QueuePublisher{Client: client, now: func() time.Time { return time.Now().UTC() }}
}

// Publish sends one job per event.
func (p *QueuePublisher) Publish(ctx context.Context, e Event) error {
	return p.Client.Send(ctx, queue.Message{
		Type:       e.Type,
		DocumentID: e.DocumentID,
		RequestID:  e.RequestID,
		EnqueuedAt: p.now().Format(time.RFC3339),
		Version:    queue.MessageVersion,
	})
}

var _ Publisher = (*QueuePublisher)(nil)
