package workspaces

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"kingsign-backend/internal/apikeys"
	"kingsign-backend/internal/documents"
	"kingsign-backend/internal/signingtokens"
)

// DocumentLookup resolves the workspace of a document.
type DocumentLookup interface {
	Get(ctx context.Context, id string) (documents.Document, error)
}

// Service manages workspaces, their ownership and their API keys.
type Service struct {
	Repo      Repo
	Keys      *apikeys.Issuer
	Documents DocumentLookup
	now       func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repo, keys *apikeys.Issuer, docs DocumentLookup) *Service {
	return &Service{Repo: repo, Keys: keys, Documents: docs, now: func() time.Time { return time.Now().UTC() }}
}

// Create makes a workspace owned by ownerUserID.
func (s *Service) Create(ctx context.Context, ownerUserID, name string) (Workspace, error) {
	name = strings.TrimSpace(name)
	if strings.TrimSpace(ownerUserID) == "" {
		return Workspace{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	if name == "" {
		return Workspace{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	now := s.now()
	ws := Workspace{
		ID:          uuid.NewString(),
		Name:        name,
		OwnerUserID: ownerUserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Create(ctx, ws); err != nil {
		return Workspace{}, err
	}
	return ws, nil
}

// List returns the caller's workspaces.
func (s *Service) List(ctx context.Context, ownerUserID string) ([]Workspace, error) {
	return s.Repo.ListByOwner(ctx, ownerUserID)
}

// GetOwned returns the workspace when ownerUserID owns it. A workspace owned
// by someone else is reported as ErrNotFound.
func (s *Service) GetOwned(ctx context.Context, ownerUserID, id string) (Workspace, error) {
	ws, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Workspace{}, err
	}
	if ownerUserID == "" || ws.OwnerUserID != ownerUserID {
		return Workspace{}, ErrNotFound
	}
	return ws, nil
}

// RotateAPIKey mints a new key for the workspace and stores it. The previous
// key stops authenticating immediately.
func (s *Service) RotateAPIKey(ctx context.Context, ownerUserID, id string) (string, error) {
	ws, err := s.GetOwned(ctx, ownerUserID, id)
	if err != nil {
		return "", err
	}
	if s.Keys == nil {
		return "", apikeys.ErrConfiguration
	}
	key, err := s.Keys.Mint(ws.ID)
	if err != nil {
		return "", err
	}
	if err := s.Repo.SetAPIKey(ctx, ws.ID, key); err != nil {
		return "", err
	}
	return key, nil
}

// CurrentAPIKey returns the key stored on the workspace.
func (s *Service) CurrentAPIKey(ctx context.Context, workspaceID string) (string, error) {
	ws, err := s.Repo.Get(ctx, workspaceID)
	if err != nil {
		return "", err
	}
	if ws.APIKey == "" {
		return "", ErrNotFound
	}
	return ws.APIKey, nil
}

// AuthorizeDocument allows userID to act on documents of workspaces they own.
func (s *Service) AuthorizeDocument(ctx context.Context, userID, documentID string) error {
	doc, err := s.Documents.Get(ctx, documentID)
	if err != nil {
		return err
	}
	if _, err := s.GetOwned(ctx, userID, doc.WorkspaceID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return signingtokens.ErrForbidden
		}
		return err
	}
	return nil
}

var (
	_ apikeys.WorkspaceKeyLookup       = (*Service)(nil)
	_ signingtokens.DocumentAuthorizer = (*Service)(nil)
)
