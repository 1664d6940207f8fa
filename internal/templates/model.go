package templates

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("template not found")
	ErrFieldNotFound = errors.New("template field not found")
	ErrInvalidInput  = errors.New("invalid template input")
	ErrInUse         = errors.New("template has documents")
)

// Template is a reusable PDF layout with placeholder fields.
type Template struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	FileID      string    `json:"fileId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Fields      []Field   `json:"templateFields"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Field is a placeholder position on a template page.
type Field struct {
	ID          string          `json:"id"`
	TemplateID  string          `json:"templateId"`
	FieldType   string          `json:"fieldType"`
	FieldName   string          `json:"fieldName"`
	Placeholder string          `json:"placeholder,omitempty"`
	X           float64         `json:"xPosition"`
	Y           float64         `json:"yPosition"`
	Width       float64         `json:"width"`
	Height      float64         `json:"height"`
	Page        int             `json:"page"`
	Required    bool            `json:"required"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

var fieldTypes = map[string]bool{
	"signature": true,
	"initials":  true,
	"text":      true,
	"name":      true,
	"email":     true,
	"date":      true,
	"checkbox":  true,
}

// ValidFieldType reports whether t is a supported field type.
func ValidFieldType(t string) bool { return fieldTypes[t] }

// HasField reports whether fieldID belongs to the template.
func (t Template) HasField(fieldID string) bool {
	for _, f := range t.Fields {
		if f.ID == fieldID {
			return true
		}
	}
	return false
}
