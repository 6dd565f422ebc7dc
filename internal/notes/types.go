package notes

import (
	"github.com/dgallion1/meetnotes/internal/analyze"
	"github.com/dgallion1/meetnotes/internal/granola"
	"github.com/dgallion1/meetnotes/internal/transcript"
)

type Participant struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	CompanyName string `json:"company_name,omitempty"`
	JobTitle    string `json:"job_title,omitempty"`
}

// Meeting is one row of a meeting listing.
type Meeting struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	CreatedAt        string        `json:"created_at"`
	Type             string        `json:"type,omitempty"`
	HasNotes         bool          `json:"has_notes"`
	ParticipantCount int           `json:"participant_count"`
	Participants     []Participant `json:"participants,omitempty"`
}

func meetingFrom(d *granola.Document) Meeting {
	m := Meeting{
		ID:        d.ID,
		Title:     d.DisplayTitle(),
		CreatedAt: d.CreatedAt,
		Type:      d.Type,
		HasNotes:  d.HasNotes(),
	}
	if d.People != nil {
		m.ParticipantCount = len(d.People.Attendees)
		for i := range d.People.Attendees {
			a := &d.People.Attendees[i]
			m.Participants = append(m.Participants, Participant{
				Name:        a.Name,
				Email:       a.Email,
				CompanyName: a.CompanyName(),
				JobTitle:    a.JobTitle(),
			})
		}
	}
	return m
}

// DocumentReport is DocumentMetrics plus the h1-h3 breakdown view.
type DocumentReport struct {
	analyze.DocumentMetrics
	HeadingBreakdown map[string]int `json:"heading_breakdown"`
}

func NewDocumentReport(m analyze.DocumentMetrics) DocumentReport {
	return DocumentReport{DocumentMetrics: m, HeadingBreakdown: m.HeadingBreakdown()}
}

type NoteDownload struct {
	Path         string         `json:"path"`
	SizeBytes    int            `json:"size_bytes"`
	Title        string         `json:"title"`
	PanelTitle   string         `json:"panel_title,omitempty"`
	TemplateSlug string         `json:"template_slug,omitempty"`
	Metrics      DocumentReport `json:"metrics"`
}

type PrivateNotesDownload struct {
	Path      string `json:"path"`
	SizeBytes int    `json:"size_bytes"`
	Title     string `json:"title"`
	WordCount int    `json:"word_count"`
	LineCount int    `json:"line_count"`
}

type TranscriptDownload struct {
	Path               string `json:"path"`
	SizeBytes          int    `json:"size_bytes"`
	Title              string `json:"title"`
	SegmentCount       int    `json:"segment_count"`
	TurnCount          int    `json:"turn_count"`
	DurationSeconds    int    `json:"duration_seconds"`
	MicrophoneSegments int    `json:"microphone_segments"`
	SystemSegments     int    `json:"system_segments"`
}

type MeetingList struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	DocumentIDs   []string `json:"document_ids"`
	DocumentCount int      `json:"document_count"`
}

type WorkspaceInfo struct {
	WorkspaceID        string  `json:"workspace_id"`
	DisplayName        string  `json:"display_name"`
	Slug               string  `json:"slug"`
	IsLocked           bool    `json:"is_locked"`
	LogoURL            *string `json:"logo_url"`
	CreatedAt          string  `json:"created_at"`
	Role               string  `json:"role"`
	PlanType           string  `json:"plan_type"`
	PrivacyModeEnabled bool    `json:"privacy_mode_enabled"`
}

func workspaceFrom(m granola.WorkspaceMembership) WorkspaceInfo {
	return WorkspaceInfo{
		WorkspaceID:        m.Workspace.ID,
		DisplayName:        m.Workspace.DisplayName,
		Slug:               m.Workspace.Slug,
		IsLocked:           m.Workspace.IsLocked,
		LogoURL:            m.Workspace.LogoURL,
		CreatedAt:          m.Workspace.CreatedAt,
		Role:               m.Role,
		PlanType:           m.PlanType,
		PrivacyModeEnabled: m.Workspace.PrivacyModeEnabled,
	}
}

type RenderResult struct {
	Markdown string         `json:"markdown"`
	Metrics  DocumentReport `json:"metrics"`
}

type TranscriptResult struct {
	Markdown string                    `json:"markdown"`
	Turns    []transcript.Turn         `json:"turns"`
	Metrics  analyze.TranscriptMetrics `json:"metrics"`
}
