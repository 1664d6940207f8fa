package events

import (
	"context"
	"sync"

	"kingsign-backend/internal/shared/metrics"
	"kingsign-backend/internal/shared/telemetry"
)

// InProcess runs each event on its own goroutine, detached from the
// publishing request's cancellation.
type InProcess struct {
	Handle HandlerFunc
	wg     sync.WaitGroup
}

// NewInProcess constructs an InProcess publisher.
func NewInProcess(handle HandlerFunc) *InProcess {
	return &InProcess{Handle: handle}
}

// Publish starts delivery and returns immediately.
func (p *InProcess) Publish(ctx context.Context, e Event) error {
	detached := WithRequestID(context.WithoutCancel(ctx), e.RequestID)
	metrics.IncWebhookDispatchJob()
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				telemetry.Error("events.handler_panic", map[string]any{
					"type":        e.Type,
					"document_id": e.DocumentID,
					"request_id":  e.RequestID,
					"panic":       rec,
				})
			}
		}()
		p.Handle(detached, e)
	}()
	return nil
}

// Wait blocks until every started delivery has finished.
func (p *InProcess) Wait() {
	p.wg.Wait()
}

var _ Publisher = (*InProcess)(nil)
