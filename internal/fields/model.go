package fields

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("document field not found")
	ErrInvalidInput = errors.New("invalid document field input")
)

// Field is one placeholder of a document, instantiated from a template field
// and optionally assigned to a contact.
type Field struct {
	ID              string          `json:"id"`
	DocumentID      string          `json:"documentId"`
	TemplateFieldID string          `json:"fieldId"`
	ContactID       string          `json:"contactId,omitempty"`
	Value           json.RawMessage `json:"value"`
	IsSigned        bool            `json:"isSigned"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Patch is a partial update; nil members are left unchanged.
type Patch struct {
	Value     *json.RawMessage
	IsSigned  *bool
	ContactID *string
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Value == nil && p.IsSigned == nil && p.ContactID == nil
}

// SignedPatch marks a field signed.
func SignedPatch() Patch {
	signed := true
	return Patch{IsSigned: &signed}
}

// AllSigned reports whether every field is signed. An empty list is not signed.
func AllSigned(list []Field) bool {
	if len(list) == 0 {
		return false
	}
	for _, f := range list {
		if !f.IsSigned {
			return false
		}
	}
	return true
}
