package granola

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Document is a meeting as returned by the notes service. Only the fields
// the relay reads are decoded; everything else is ignored.
type Document struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
	Type            string          `json:"type"`
	Notes           json.RawMessage `json:"notes"`
	NotesPlain      string          `json:"notes_plain"`
	NotesMarkdown   string          `json:"notes_markdown"`
	People          *People         `json:"people"`
	DeletedAt       *string         `json:"deleted_at"`
	LastViewedPanel *Panel          `json:"last_viewed_panel"`
}

// HasNotes reports whether the document carries any notes content.
func (d *Document) HasNotes() bool {
	if d.NotesMarkdown != "" {
		return true
	}
	return gjson.GetBytes(d.Notes, "content.#").Int() > 0
}

// DisplayTitle is the title shown in listings.
func (d *Document) DisplayTitle() string {
	if d.Title == "" {
		return "(Untitled)"
	}
	return d.Title
}

type People struct {
	Title     string     `json:"title"`
	Creator   *Attendee  `json:"creator"`
	Attendees []Attendee `json:"attendees"`
}

type Attendee struct {
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Details *PersonInfo `json:"details"`
}

type PersonInfo struct {
	Person *struct {
		JobTitle string `json:"jobTitle"`
	} `json:"person"`
	Company *struct {
		Name string `json:"name"`
	} `json:"company"`
}

// CompanyName returns the attendee's enriched company name, if any.
func (a *Attendee) CompanyName() string {
	if a.Details == nil || a.Details.Company == nil {
		return ""
	}
	return a.Details.Company.Name
}

// JobTitle returns the attendee's enriched job title, if any.
func (a *Attendee) JobTitle() string {
	if a.Details == nil || a.Details.Person == nil {
		return ""
	}
	return a.Details.Person.JobTitle
}

// Panel is a generated notes view attached to a document. Content is either
// a ProseMirror JSON object or an HTML string.
type Panel struct {
	ID           string          `json:"id"`
	DocumentID   string          `json:"document_id"`
	Title        string          `json:"title"`
	TemplateSlug string          `json:"template_slug"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
	Content      json.RawMessage `json:"content"`
	DeletedAt    *string         `json:"deleted_at"`
	LastViewedAt *string         `json:"last_viewed_at"`
}

// ContentKind distinguishes the two panel content encodings.
type ContentKind int

const (
	ContentEmpty ContentKind = iota
	ContentProseMirror
	ContentHTML
)

// Kind reports how the panel content is encoded.
func (p *Panel) Kind() ContentKind {
	trimmed := bytes.TrimSpace(p.Content)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		return ContentEmpty
	case trimmed[0] == '{':
		return ContentProseMirror
	case trimmed[0] == '"':
		return ContentHTML
	default:
		return ContentEmpty
	}
}

// HTML returns the decoded HTML string for ContentHTML panels.
func (p *Panel) HTML() (string, error) {
	var s string
	if err := json.Unmarshal(p.Content, &s); err != nil {
		return "", err
	}
	return s, nil
}

// DocumentList is a user-curated folder of meetings.
type DocumentList struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	DocumentIDs []string `json:"document_ids"`
}

type documentsResponse struct {
	Docs    []Document `json:"docs"`
	Deleted []string   `json:"deleted"`
}

// Workspace is a team workspace as returned by the notes service.
type Workspace struct {
	ID                 string  `json:"workspace_id"`
	Slug               string  `json:"slug"`
	DisplayName        string  `json:"display_name"`
	IsLocked           bool    `json:"is_locked"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
	PrivacyModeEnabled bool    `json:"privacy_mode_enabled"`
	LogoURL            *string `json:"logo_url"`
	DeletedAt          *string `json:"deleted_at"`
}

// WorkspaceMembership pairs a workspace with the user's role and plan in it.
type WorkspaceMembership struct {
	Workspace Workspace `json:"workspace"`
	Role      string    `json:"role"`
	PlanType  string    `json:"plan_type"`
}

type workspacesResponse struct {
	Workspaces []WorkspaceMembership `json:"workspaces"`
}
