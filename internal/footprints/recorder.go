package footprints

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"kingsign-backend/internal/shared/telemetry"
)

// Recorder writes signing footprints.
type Recorder struct {
	Repo Repo
	now  func() time.Time
}

// NewRecorder constructs a Recorder.
func NewRecorder(repo Repo) *Recorder {
	return &Recorder{Repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Exists reports whether the contact already signed the document.
func (r *Recorder) Exists(ctx context.Context, documentID, contactID string) (bool, error) {
	return r.Repo.Exists(ctx, documentID, contactID)
}

// Claim records the footprint for (documentID, contactID). It returns
// ErrDuplicate when another request already holds the claim.
func (r *Recorder) Claim(ctx context.Context, documentID, contactID string, prov Provenance) (Footprint, error) {
	if strings.TrimSpace(documentID) == "" || strings.TrimSpace(contactID) == "" {
		return Footprint{}, ErrInvalidInput
	}
	fp := Footprint{
		ID:         uuid.NewString(),
		DocumentID: documentID,
		ContactID:  contactID,
		Provenance: prov,
		CreatedAt:  r.now(),
	}
	if fp.IPAddress == "" {
		fp.IPAddress = unknown
	}
	if fp.UserAgent == "" {
		fp.UserAgent = unknown
	}
	if err := r.Repo.Create(ctx, fp); err != nil {
		return Footprint{}, err
	}
	return fp, nil
}

// Release drops a claim so the signer can retry. Failures are logged only.
func (r *Recorder) Release(ctx context.Context, documentID, contactID string) {
	if err := r.Repo.Delete(ctx, documentID, contactID); err != nil {
		telemetry.Error("footprints.release_failed", map[string]any{
			"document_id": documentID,
			"contact_id":  contactID,
			"error":       err,
		})
	}
}

// List returns the footprints of a document.
func (r *Recorder) List(ctx context.Context, documentID string) ([]Footprint, error) {
	return r.Repo.ListByDocument(ctx, documentID)
}

// IsDuplicate reports whether err is a lost signing claim.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
