// Package notes implements the relay's operations: listing and searching
// meetings, fetching notes, exporting notes and transcripts to files, and
// the pure render and analyze passthroughs.
package notes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/meetnotes/internal/analyze"
	"github.com/dgallion1/meetnotes/internal/doctree"
	"github.com/dgallion1/meetnotes/internal/export"
	"github.com/dgallion1/meetnotes/internal/granola"
	"github.com/dgallion1/meetnotes/internal/parser"
	"github.com/dgallion1/meetnotes/internal/render"
	"github.com/dgallion1/meetnotes/internal/transcript"
)

const (
	DefaultListLimit = 20
	NoNotesMessage   = "(No notes available for this meeting)"
)

var (
	// ErrInvalidInput marks caller mistakes such as a missing document id.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoContent is returned when a document exists but has nothing to export.
	ErrNoContent = errors.New("no content")
)

// Upstream is the subset of the notes service client the relay uses.
type Upstream interface {
	ListDocuments(ctx context.Context, limit, offset int, includePanel bool) ([]granola.Document, error)
	GetDocument(ctx context.Context, id string) (*granola.Document, error)
	GetPanels(ctx context.Context, documentID string) ([]granola.Panel, error)
	GetTranscript(ctx context.Context, documentID string) ([]transcript.Segment, error)
	ListLists(ctx context.Context) ([]granola.DocumentList, error)
	ListWorkspaces(ctx context.Context) ([]granola.WorkspaceMembership, error)
	ResolveURL(ctx context.Context, raw string) (*granola.ResolvedURL, error)
}

// Recorder receives render and export outcomes.
type Recorder interface {
	ObserveRender(format string, err error)
	ObserveExport(kind string, size int)
}

type Options struct {
	ListLimitMax int
	MaxDepth     int
	Recorder     Recorder
	Logger       *slog.Logger
}

type Service struct {
	upstream     Upstream
	exports      *export.Store
	renderer     *render.Renderer
	maxDepth     int
	listLimitMax int
	recorder     Recorder
	log          *slog.Logger
}

func NewService(upstream Upstream, exports *export.Store, opts Options) *Service {
	if opts.ListLimitMax <= 0 {
		opts.ListLimitMax = 100
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		upstream:     upstream,
		exports:      exports,
		renderer:     render.New(opts.MaxDepth),
		maxDepth:     opts.MaxDepth,
		listLimitMax: opts.ListLimitMax,
		recorder:     opts.Recorder,
		log:          opts.Logger,
	}
}

// ListOptions pages and filters ListMeetings.
type ListOptions struct {
	Limit  int
	Offset int
	// Search keeps meetings whose title contains it, case-insensitively.
	// The filter applies to the fetched page.
	Search string
}

// ListMeetings returns one page of meetings.
func (s *Service) ListMeetings(ctx context.Context, opts ListOptions) ([]Meeting, error) {
	if opts.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", ErrInvalidInput)
	}
	limit := s.clampLimit(opts.Limit)

	docs, err := s.upstream.ListDocuments(ctx, limit, opts.Offset, false)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(opts.Search))
	meetings := make([]Meeting, 0, len(docs))
	for i := range docs {
		if needle != "" && !strings.Contains(strings.ToLower(docs[i].Title), needle) {
			continue
		}
		meetings = append(meetings, meetingFrom(&docs[i]))
	}
	return meetings, nil
}

// SearchMeetings matches query against titles of the most recent meetings.
func (s *Service) SearchMeetings(ctx context.Context, query string, limit int) ([]Meeting, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidInput)
	}
	meetings, err := s.ListMeetings(ctx, ListOptions{Limit: s.listLimitMax, Search: query})
	if err != nil {
		return nil, err
	}
	if limit = s.clampLimit(limit); len(meetings) > limit {
		meetings = meetings[:limit]
	}
	return meetings, nil
}

// GetNotes returns a meeting's notes as Markdown. Pre-rendered Markdown
// wins over the structured notes document.
func (s *Service) GetNotes(ctx context.Context, documentID string) (string, error) {
	doc, err := s.document(ctx, documentID)
	if err != nil {
		return "", err
	}
	md, err := s.notesMarkdown(doc)
	if err != nil {
		return "", err
	}
	if md == "" {
		return NoNotesMessage, nil
	}
	return md, nil
}

// DownloadNote exports the meeting's generated notes panel.
func (s *Service) DownloadNote(ctx context.Context, documentID string) (*NoteDownload, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document_id is required", ErrInvalidInput)
	}
	log := s.log.With("document_id", documentID)

	var (
		doc    *granola.Document
		panels []granola.Panel
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.upstream.GetDocument(gctx, documentID)
		doc = d
		return err
	})
	g.Go(func() error {
		p, err := s.upstream.GetPanels(gctx, documentID)
		panels = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch document %s: %w", documentID, err)
	}

	result := &NoteDownload{Title: doc.DisplayTitle()}
	var md string
	if panel := PickPanel(doc, panels); panel != nil {
		var err error
		if md, err = s.renderPanel(panel); err != nil {
			return nil, fmt.Errorf("render panel %s: %w", panel.ID, err)
		}
		result.PanelTitle = panel.Title
		result.TemplateSlug = panel.TemplateSlug
	} else {
		log.Info("no usable panel, falling back to document notes")
		var err error
		if md, err = s.notesMarkdown(doc); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(md) == "" {
		return nil, fmt.Errorf("%w: document %s has no notes", ErrNoContent, documentID)
	}

	entry, err := s.write(export.KindNote, doc, md)
	if err != nil {
		return nil, err
	}
	result.Path = entry.Path
	result.SizeBytes = entry.SizeBytes
	result.Metrics = NewDocumentReport(analyze.Analyze(md))
	log.Info("note exported", "path", entry.Path, "size_bytes", entry.SizeBytes)
	return result, nil
}

// DownloadPrivateNotes exports the notes the user typed during the meeting.
func (s *Service) DownloadPrivateNotes(ctx context.Context, documentID string) (*PrivateNotesDownload, error) {
	doc, err := s.document(ctx, documentID)
	if err != nil {
		return nil, err
	}
	md, err := s.notesMarkdown(doc)
	if err != nil {
		return nil, err
	}
	if md == "" {
		md = strings.TrimSpace(doc.NotesPlain)
	}
	if md == "" {
		return nil, fmt.Errorf("%w: document %s has no private notes", ErrNoContent, documentID)
	}

	entry, err := s.write(export.KindPrivateNotes, doc, md)
	if err != nil {
		return nil, err
	}
	m := analyze.Analyze(md)
	s.log.Info("private notes exported", "document_id", documentID, "path", entry.Path)
	return &PrivateNotesDownload{
		Path:      entry.Path,
		SizeBytes: entry.SizeBytes,
		Title:     doc.DisplayTitle(),
		WordCount: m.WordCount,
		LineCount: m.LineCount,
	}, nil
}

// DownloadTranscript exports the merged speaker turns of a meeting.
func (s *Service) DownloadTranscript(ctx context.Context, documentID string) (*TranscriptDownload, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document_id is required", ErrInvalidInput)
	}

	var (
		doc      *granola.Document
		segments []transcript.Segment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.upstream.GetDocument(gctx, documentID)
		doc = d
		return err
	})
	g.Go(func() error {
		segs, err := s.upstream.GetTranscript(gctx, documentID)
		segments = segs
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch transcript %s: %w", documentID, err)
	}

	turns := transcript.Merge(segments)
	s.observeRender("transcript", nil)
	if len(turns) == 0 {
		return nil, fmt.Errorf("%w: document %s has no final transcript segments", ErrNoContent, documentID)
	}
	md := transcript.Render(turns)

	entry, err := s.write(export.KindTranscript, doc, md)
	if err != nil {
		return nil, err
	}
	m := analyze.AnalyzeTranscript(turns)
	s.log.Info("transcript exported", "document_id", documentID, "path", entry.Path, "turns", m.TurnCount)
	return &TranscriptDownload{
		Path:               entry.Path,
		SizeBytes:          entry.SizeBytes,
		Title:              doc.DisplayTitle(),
		SegmentCount:       m.SegmentCount,
		TurnCount:          m.TurnCount,
		DurationSeconds:    m.DurationSeconds,
		MicrophoneSegments: m.PerSpeaker[transcript.SourceMicrophone].Segments,
		SystemSegments:     m.PerSpeaker[transcript.SourceSystem].Segments,
	}, nil
}

// ListMeetingLists returns the user's meeting lists.
func (s *Service) ListMeetingLists(ctx context.Context) ([]MeetingList, error) {
	lists, err := s.upstream.ListLists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list meeting lists: %w", err)
	}
	out := make([]MeetingList, 0, len(lists))
	for _, l := range lists {
		out = append(out, MeetingList{
			ID:            l.ID,
			Title:         l.Title,
			Description:   l.Description,
			DocumentIDs:   l.DocumentIDs,
			DocumentCount: len(l.DocumentIDs),
		})
	}
	return out, nil
}

// ListWorkspaces returns the user's live workspaces with role and plan.
func (s *Service) ListWorkspaces(ctx context.Context) ([]WorkspaceInfo, error) {
	memberships, err := s.upstream.ListWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	out := make([]WorkspaceInfo, 0, len(memberships))
	for _, m := range memberships {
		if m.Workspace.DeletedAt != nil {
			continue
		}
		out = append(out, workspaceFrom(m))
	}
	return out, nil
}

// ResolveURL maps a meeting link or bare id onto a document id.
func (s *Service) ResolveURL(ctx context.Context, raw string) (*granola.ResolvedURL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: url is required", ErrInvalidInput)
	}
	res, err := s.upstream.ResolveURL(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", raw, err)
	}
	return res, nil
}

// RenderDocument parses body according to contentType (ProseMirror JSON
// when empty) and renders it to Markdown with metrics.
func (s *Service) RenderDocument(body []byte, contentType string) (*RenderResult, error) {
	p, err := parser.ForContentType(contentType, s.maxDepth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	format := formatOf(p)

	doc, err := p.Parse(bytes.NewReader(body), "")
	if err != nil {
		s.observeRender(format, err)
		return nil, err
	}
	md, err := s.renderer.Render(doc)
	s.observeRender(format, err)
	if err != nil {
		return nil, err
	}
	return &RenderResult{Markdown: md, Metrics: NewDocumentReport(analyze.Analyze(md))}, nil
}

// RenderTranscript merges and renders a raw segment array.
func (s *Service) RenderTranscript(body []byte) (*TranscriptResult, error) {
	segments, err := transcript.Decode(body)
	s.observeRender("transcript", err)
	if err != nil {
		return nil, err
	}
	turns := transcript.Merge(segments)
	return &TranscriptResult{
		Markdown: transcript.Render(turns),
		Turns:    turns,
		Metrics:  analyze.AnalyzeTranscript(turns),
	}, nil
}

// AnalyzeMarkdown computes metrics for arbitrary Markdown.
func (s *Service) AnalyzeMarkdown(markdown string) DocumentReport {
	return NewDocumentReport(analyze.Analyze(markdown))
}

func (s *Service) document(ctx context.Context, documentID string) (*granola.Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document_id is required", ErrInvalidInput)
	}
	doc, err := s.upstream.GetDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document %s: %w", documentID, err)
	}
	return doc, nil
}

// notesMarkdown returns the document's own notes, or "" when it has none.
func (s *Service) notesMarkdown(doc *granola.Document) (string, error) {
	if strings.TrimSpace(doc.NotesMarkdown) != "" {
		return doc.NotesMarkdown, nil
	}
	if !doc.HasNotes() {
		return "", nil
	}
	md, err := s.renderer.RenderJSON(doc.Notes)
	s.observeRender("json", err)
	if err != nil {
		return "", fmt.Errorf("render notes for %s: %w", doc.ID, err)
	}
	return md, nil
}

func (s *Service) renderPanel(panel *granola.Panel) (string, error) {
	switch panel.Kind() {
	case granola.ContentProseMirror:
		md, err := s.renderer.RenderJSON(panel.Content)
		s.observeRender("json", err)
		return md, err

	case granola.ContentHTML:
		html, err := panel.HTML()
		if err != nil {
			return "", err
		}
		doc, err := (&parser.HTMLParser{}).Parse(strings.NewReader(html), "")
		if err != nil {
			s.observeRender("html", err)
			return "", err
		}
		md, err := s.renderer.Render(doc)
		s.observeRender("html", err)
		return md, err

	default:
		return "", nil
	}
}

func (s *Service) write(kind string, doc *granola.Document, md string) (export.Entry, error) {
	entry, err := s.exports.Write(kind, doc.ID, doc.DisplayTitle(), md)
	if err != nil {
		return export.Entry{}, err
	}
	if s.recorder != nil {
		s.recorder.ObserveExport(kind, entry.SizeBytes)
	}
	return entry, nil
}

func (s *Service) observeRender(format string, err error) {
	if s.recorder != nil {
		s.recorder.ObserveRender(format, err)
	}
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return min(limit, s.listLimitMax)
}

// PickPanel chooses the panel to export: the last viewed one when it is
// still live, else the first live panel with content.
func PickPanel(doc *granola.Document, panels []granola.Panel) *granola.Panel {
	usable := func(p *granola.Panel) bool {
		return p.DeletedAt == nil && p.Kind() != granola.ContentEmpty
	}

	if lv := doc.LastViewedPanel; lv != nil {
		for i := range panels {
			if panels[i].ID == lv.ID && usable(&panels[i]) {
				return &panels[i]
			}
		}
		if usable(lv) {
			return lv
		}
	}
	for i := range panels {
		if usable(&panels[i]) {
			return &panels[i]
		}
	}
	return nil
}

func formatOf(p parser.Parser) string {
	switch p.(type) {
	case *parser.HTMLParser:
		return "html"
	case *parser.MarkdownParser:
		return "markdown"
	default:
		return "json"
	}
}

// IsStructural reports whether err is a malformed-input error from the
// document tree or transcript decoders.
func IsStructural(err error) bool {
	var se *doctree.StructuralError
	return errors.As(err, &se)
}
