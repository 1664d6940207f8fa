package users

import (
	"context"
	"errors"
	"strings"

	"kingsign-backend/internal/workspaces"
)

var errNotConfigured = errors.New("users service not configured")

// WorkspaceLister lists the workspaces owned by a user.
type WorkspaceLister interface {
	List(ctx context.Context, ownerUserID string) ([]workspaces.Workspace, error)
}

type Service struct {
	Repo       Repo
	Workspaces WorkspaceLister
}

func NewService(repo Repo, ws WorkspaceLister) *Service {
	return &Service{Repo: repo, Workspaces: ws}
}

// UpsertFromAuth persists the identity returned by the OAuth provider so that
// workspaces can reference their owner.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) error {
	if s == nil || s.Repo == nil {
		return errNotConfigured
	}
	if strings.TrimSpace(user.ID) == "" || strings.TrimSpace(user.Email) == "" {
		return errors.New("user id and email are required")
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errNotConfigured
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

// Profile loads the user and the workspaces it owns.
func (s *Service) Profile(ctx context.Context, userID string) (Profile, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	profile := Profile{User: user, Workspaces: []workspaces.Workspace{}}
	if s.Workspaces == nil {
		return profile, nil
	}
	list, err := s.Workspaces.List(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if list != nil {
		profile.Workspaces = list
	}
	return profile, nil
}
