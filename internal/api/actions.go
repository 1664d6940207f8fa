// Package api serves the machine-to-machine action endpoint authenticated by
// workspace API keys.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"kingsign-backend/internal/contacts"
	"kingsign-backend/internal/documents"
	"kingsign-backend/internal/files"
	"kingsign-backend/internal/templates"
)

// Action names one operation of the action endpoint.
type Action string

const (
	ActionGetTemplates        Action = "GET_TEMPLATES"
	ActionGetTemplate         Action = "GET_TEMPLATE"
	ActionGetDocuments        Action = "GET_DOCUMENTS"
	ActionGetDocument         Action = "GET_DOCUMENT"
	ActionGetDocumentsByEmail Action = "GET_DOCUMENTS_BY_EMAIL"
	ActionGetContacts         Action = "GET_CONTACTS"
	ActionGetContact          Action = "GET_CONTACT"
	ActionCreateContact       Action = "CREATE_CONTACT"
	ActionCreateDocument      Action = "CREATE_DOCUMENT"
	ActionDownloadDocument    Action = "DOWNLOAD_DOCUMENT"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrBadPayload    = errors.New("invalid request payload")
	ErrNoFile        = errors.New("document has no associated file")
)

// TemplateReader lists and loads workspace templates.
type TemplateReader interface {
	List(ctx context.Context, workspaceID string) ([]templates.Template, error)
	Get(ctx context.Context, workspaceID, id string) (templates.Template, error)
}

// DocumentService is the document surface exposed to integrators.
type DocumentService interface {
	List(ctx context.Context, workspaceID string, includeArchived bool) ([]documents.WithFields, error)
	GetInWorkspace(ctx context.Context, workspaceID, id string) (documents.Document, error)
	Assemble(ctx context.Context, doc documents.Document) (documents.WithFields, error)
	ListByContactEmail(ctx context.Context, workspaceID, email string) ([]documents.WithFields, error)
	Create(ctx context.Context, workspaceID string, in documents.CreateInput) (documents.WithFields, error)
}

// ContactService is the contact surface exposed to integrators.
type ContactService interface {
	List(ctx context.Context, workspaceID string) ([]contacts.Contact, error)
	Get(ctx context.Context, workspaceID, id string) (contacts.Contact, error)
	FindOrCreate(ctx context.Context, workspaceID string, in contacts.Input) (contacts.Contact, bool, error)
}

// FileService resolves stored files to download URLs.
type FileService interface {
	Get(ctx context.Context, workspaceID, id string) (files.File, error)
	DownloadURL(ctx context.Context, f files.File) (string, error)
}

type actionFunc func(ctx context.Context, workspaceID string, payload json.RawMessage) (any, error)

type idPayload struct {
	ID string `json:"id"`
}

type listPayload struct {
	Query struct {
		Archived bool `json:"archived"`
	} `json:"query"`
}

type emailPayload struct {
	Email string `json:"email"`
}

type downloadPayload struct {
	DocumentID string `json:"documentId"`
}

// DocumentSummary is the document part of a download response.
type DocumentSummary struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Status    documents.Status `json:"status"`
	CreatedAt string           `json:"createdAt"`
	UpdatedAt string           `json:"updatedAt"`
}

// Download is the DOWNLOAD_DOCUMENT result.
type Download struct {
	DownloadURL   string          `json:"downloadUrl"`
	FileName      string          `json:"fileName"`
	FileType      string          `json:"fileType"`
	FileExtension string          `json:"fileExtension"`
	Document      DocumentSummary `json:"document"`
	SignedFields  int             `json:"signedFields"`
	TotalFields   int             `json:"totalFields"`
}

// Dispatcher maps actions to their implementations.
type Dispatcher struct {
	Templates TemplateReader
	Documents DocumentService
	Contacts  ContactService
	Files     FileService
	actions   map[Action]actionFunc
}

// NewDispatcher builds the action table.
func NewDispatcher(tpl TemplateReader, docs DocumentService, contactSvc ContactService, fileSvc FileService) *Dispatcher {
	d := &Dispatcher{Templates: tpl, Documents: docs, Contacts: contactSvc, Files: fileSvc}
	d.actions = map[Action]actionFunc{
		ActionGetTemplates:        d.getTemplates,
		ActionGetTemplate:         d.getTemplate,
		ActionGetDocuments:        d.getDocuments,
		ActionGetDocument:         d.getDocument,
		ActionGetDocumentsByEmail: d.getDocumentsByEmail,
		ActionGetContacts:         d.getContacts,
		ActionGetContact:          d.getContact,
		ActionCreateContact:       d.createContact,
		ActionCreateDocument:      d.createDocument,
		ActionDownloadDocument:    d.downloadDocument,
	}
	return d
}

// Actions returns the supported action names.
func (d *Dispatcher) Actions() []Action {
	out := make([]Action, 0, len(d.actions))
	for a := range d.actions {
		out = append(out, a)
	}
	return out
}

// Run executes one action for workspaceID.
func (d *Dispatcher) Run(ctx context.Context, workspaceID string, action Action, payload json.RawMessage) (any, error) {
	fn, ok := d.actions[Action(strings.TrimSpace(string(action)))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}
	return fn(ctx, workspaceID, payload)
}

func decodePayload(payload json.RawMessage, dst any) error {
	if len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

func requireID(payload json.RawMessage) (string, error) {
	var p idPayload
	if err := decodePayload(payload, &p); err != nil {
		return "", err
	}
	if strings.TrimSpace(p.ID) == "" {
		return "", fmt.Errorf("%w: id is required", ErrBadPayload)
	}
	return p.ID, nil
}

func (d *Dispatcher) getTemplates(ctx context.Context, workspaceID string, _ json.RawMessage) (any, error) {
	return d.Templates.List(ctx, workspaceID)
}

func (d *Dispatcher) getTemplate(ctx context.Context, workspaceID string, payload json.RawMessage) (any, error) {
	id, err := requireID(payload)
	if err != nil {
		return nil, err
	}
	return d.Templates.Get(ctx, workspaceID, id)
}

func (d *Dispatcher) getDocuments(ctx context.Context, workspaceID string, payload json.RawMessage) (any, error) {
	var p listPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}
	return d.Documents.List(ctx, workspaceID, p.Query.Archived)
}

func (d *Dispatcher) getDocument(ctx context.Context, workspaceID string, payload json.RawMessage) (any, error) {
	id, err := requireID(payload)
	if err != nil {
		return nil, err
	}
	doc, err := d.Documents.GetInWorkspace(ctx, workspaceID, id)
	if err != nil {
		return nil, err
	}
	return d.Documents.Assemble(ctx, doc)
}

func (d *Dispatcher) getDocumentsByEmail(ctx context.Context, workspaceID string, payload json.RawMessage) (any, error) {
	var p emailPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Email) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrBadPayload)
	}
	return d.Documents.ListByContactEmail(ctx, workspaceID, p.Email)
}

func (d *Dispatcher) getContacts(ctx context.Context, workspaceID string, _ json.RawMessage) (any, error) {
	return d.Contacts.List(ctx, workspaceID)
}

func (d *Dispatcher) getContact(ctx context.Context, workspaceID string, payload json.RawMessage) (any, error) {
	id, err := requireID(payload)
	if err != nil {
		return nil, err
	}
	return d.Contacts.Get(ctx, workspaceID, id)
}

func (d *Dispatcher) createContact(ctx context.Context, workspaceID string, payload json.RawMessage) (any, error) {
	var in contacts.Input
	if err := decodePayload(payload, &in); err != nil {
		return nil, err
	}
	contact, _, err := d.Contacts.FindOrCreate(ctx, workspaceID, in)
	return contact, err
}

func (d *Dispatcher) createDocument(ctx context.Context, workspaceID string, payload json.RawMessage) (any, error) {
	var in documents.CreateInput
	if err := decodePayload(payload, &in); err != nil {
		return nil, err
	}
	return d.Documents.Create(ctx, workspaceID, in)
}

func (d *Dispatcher) downloadDocument(ctx context.Context, workspaceID string, payload json.RawMessage) (any, error) {
	var p downloadPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.DocumentID) == "" {
		return nil, fmt.Errorf("%w: documentId is required", ErrBadPayload)
	}

	doc, err := d.Documents.GetInWorkspace(ctx, workspaceID, p.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.FileID == "" {
		return nil, ErrNoFile
	}
	wf, err := d.Documents.Assemble(ctx, doc)
	if err != nil {
		return nil, err
	}
	file, err := d.Files.Get(ctx, workspaceID, doc.FileID)
	if err != nil {
		return nil, err
	}
	url, err := d.Files.DownloadURL(ctx, file)
	if err != nil {
		return nil, err
	}

	signed := 0
	for _, f := range wf.Fields {
		if f.IsSigned {
			signed++
		}
	}
	return Download{
		DownloadURL:   url,
		FileName:      file.FileName,
		FileType:      file.FileType,
		FileExtension: file.FileExtension,
		Document: DocumentSummary{
			ID:        doc.ID,
			Title:     doc.Title,
			Status:    doc.Status,
			CreatedAt: doc.CreatedAt.UTC().Format(timeLayout),
			UpdatedAt: doc.UpdatedAt.UTC().Format(timeLayout),
		},
		SignedFields: signed,
		TotalFields:  len(wf.Fields),
	}, nil
}
