package users

import (
	"time"

	"kingsign-backend/internal/workspaces"
)

// User is an account created on first Google sign-in. ID is the session
// subject ("google:<sub>").
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	PictureURL string    `json:"pictureUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Profile is the /me view: the account plus the workspaces it owns.
type Profile struct {
	User
	Workspaces []workspaces.Workspace `json:"workspaces"`
}
