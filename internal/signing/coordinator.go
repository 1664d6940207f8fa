// Package signing completes documents on behalf of their signers.
package signing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"kingsign-backend/internal/documents"
	"kingsign-backend/internal/events"
	"kingsign-backend/internal/fields"
	"kingsign-backend/internal/footprints"
	"kingsign-backend/internal/integrations"
	"kingsign-backend/internal/shared/metrics"
	"kingsign-backend/internal/shared/telemetry"
)

var (
	ErrValidation         = errors.New("documentId and contactId are required")
	ErrAlreadySigned      = errors.New("document has already been signed by this contact")
	ErrNoFieldsFound      = errors.New("no fields found for the given document and contact")
	ErrPartialSignFailure = errors.New("some fields could not be signed")
)

// FieldStore reads and patches document fields.
type FieldStore interface {
	FindFields(ctx context.Context, documentID, contactID string) ([]fields.Field, error)
	Patch(ctx context.Context, id string, p fields.Patch) (fields.Field, error)
}

// StatusStore completes documents.
type StatusStore interface {
	MarkSigned(ctx context.Context, id string) (documents.Document, bool, error)
}

// Auditor guards and records signing footprints.
type Auditor interface {
	Exists(ctx context.Context, documentID, contactID string) (bool, error)
	Claim(ctx context.Context, documentID, contactID string, prov footprints.Provenance) (footprints.Footprint, error)
	Release(ctx context.Context, documentID, contactID string)
}

// Result is the outcome of an applied batch.
type Result struct {
	SignedFieldsCount int
	DocumentStatus    documents.Status
	Completed         bool
}

// Coordinator runs the batch-sign transaction.
type Coordinator struct {
	Fields    FieldStore
	Documents StatusStore
	Audit     Auditor
	Events    events.Publisher
}

// NewCoordinator constructs a Coordinator.
func NewCoordinator(fieldStore FieldStore, docs StatusStore, audit Auditor, pub events.Publisher) *Coordinator {
	return &Coordinator{Fields: fieldStore, Documents: docs, Audit: audit, Events: pub}
}

// BatchSign signs every field assigned to contactID on documentID.
//
// The footprint insert is the idempotency gate: it runs before any field is
// touched, and losing it to a concurrent request yields ErrAlreadySigned.
// A document completed by this batch publishes exactly one
// document.completed event; delivery happens off the request path.
func (c *Coordinator) BatchSign(ctx context.Context, documentID, contactID string, prov footprints.Provenance) (Result, error) {
	documentID = strings.TrimSpace(documentID)
	contactID = strings.TrimSpace(contactID)
	if documentID == "" || contactID == "" {
		return Result{}, ErrValidation
	}
	logFields := map[string]any{
		"document_id": documentID,
		"contact_id":  contactID,
		"request_id":  events.RequestIDFromContext(ctx),
	}

	exists, err := c.Audit.Exists(ctx, documentID, contactID)
	if err != nil {
		telemetry.Warn("signing.footprint_lookup_failed", withError(logFields, err))
	}
	if exists {
		metrics.IncBatchSign("already_signed")
		return Result{}, ErrAlreadySigned
	}

	mine, err := c.Fields.FindFields(ctx, documentID, contactID)
	if err != nil {
		metrics.IncBatchSign("failed")
		return Result{}, fmt.Errorf("load contact fields: %w", err)
	}
	if len(mine) == 0 {
		metrics.IncBatchSign("no_fields")
		return Result{}, ErrNoFieldsFound
	}

	claimed := true
	if _, err := c.Audit.Claim(ctx, documentID, contactID, prov); err != nil {
		if footprints.IsDuplicate(err) {
			metrics.IncBatchSign("already_signed")
			return Result{}, ErrAlreadySigned
		}
		claimed = false
		telemetry.Error("signing.footprint_write_failed", withError(logFields, err))
	}
	// Every failure past this point hands the claim back so a retry can
	// finish the completion check.
	release := func() {
		if claimed {
			c.Audit.Release(context.WithoutCancel(ctx), documentID, contactID)
		}
	}

	var signed atomic.Int64
	var g errgroup.Group
	for _, f := range mine {
		id := f.ID
		g.Go(func() error {
			if _, err := c.Fields.Patch(ctx, id, fields.SignedPatch()); err != nil {
				return fmt.Errorf("sign field %s: %w", id, err)
			}
			signed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		failure := withError(logFields, err)
		failure["signed"] = signed.Load()
		failure["requested"] = len(mine)
		telemetry.Error("signing.partial_failure", failure)
		release()
		metrics.IncBatchSign("failed")
		return Result{}, fmt.Errorf("%w: %v", ErrPartialSignFailure, err)
	}

	all, err := c.Fields.FindFields(ctx, documentID, "")
	if err != nil {
		telemetry.Error("signing.reload_failed", withError(logFields, err))
		release()
		metrics.IncBatchSign("failed")
		return Result{}, fmt.Errorf("reload document fields: %w", err)
	}

	result := Result{SignedFieldsCount: len(mine), DocumentStatus: documents.StatusPending}
	if !fields.AllSigned(all) {
		metrics.IncBatchSign("applied")
		return result, nil
	}

	_, transitioned, err := c.Documents.MarkSigned(ctx, documentID)
	if err != nil {
		telemetry.Error("signing.mark_signed_failed", withError(logFields, err))
		release()
		metrics.IncBatchSign("failed")
		return Result{}, fmt.Errorf("mark document signed: %w", err)
	}
	result.DocumentStatus = documents.StatusSigned
	result.Completed = transitioned
	if transitioned {
		c.publish(ctx, integrations.TypeDocumentCompleted, documentID, logFields)
	}
	metrics.IncBatchSign("completed")
	return result, nil
}

func (c *Coordinator) publish(ctx context.Context, eventType, documentID string, logFields map[string]any) {
	if c.Events == nil {
		return
	}
	err := c.Events.Publish(ctx, events.Event{
		Type:       eventType,
		DocumentID: documentID,
		RequestID:  events.RequestIDFromContext(ctx),
	})
	if err != nil {
		failure := withError(logFields, err)
		failure["type"] = eventType
		telemetry.Error("signing.dispatch_enqueue_failed", failure)
	}
}

func withError(base map[string]any, err error) map[string]any {
	out := make(map[string]any, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	out["error"] = err
	return out
}
