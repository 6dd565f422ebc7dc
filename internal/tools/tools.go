// Package tools exposes the notes relay operations as MCP tools.
package tools

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dgallion1/meetnotes/internal/notes"
)

const ServerName = "meetnotes"

// formatContentTypes maps the render_document format argument onto the
// content types the parser dispatch understands.
var formatContentTypes = map[string]string{
	"json":     "application/json",
	"html":     "text/html",
	"markdown": "text/markdown",
}

// NewServer builds an MCP server with every relay tool registered.
func NewServer(svc *notes.Service, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	Register(s, svc, log)
	return s
}

// Register adds the relay tools to s.
func Register(s *server.MCPServer, svc *notes.Service, log *slog.Logger) {
	if log == nil {
		log = slog.Default()
	}
	h := &handlers{notes: svc, log: log}

	s.AddTool(mcp.NewTool("list_meetings",
		mcp.WithDescription("List recent meetings with participants and whether notes exist."),
		mcp.WithNumber("limit", mcp.Description("Maximum number of meetings to return.")),
		mcp.WithNumber("offset", mcp.Description("Number of meetings to skip.")),
		mcp.WithString("search", mcp.Description("Only keep meetings whose title contains this text.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.listMeetings)

	s.AddTool(mcp.NewTool("search_meetings",
		mcp.WithDescription("Find meetings by title, case-insensitively."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to look for in meeting titles.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of matches to return.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.searchMeetings)

	s.AddTool(mcp.NewTool("get_notes",
		mcp.WithDescription("Return a meeting's notes as Markdown."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Meeting document id.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.getNotes)

	s.AddTool(mcp.NewTool("download_note",
		mcp.WithDescription("Export the generated notes panel of a meeting to a Markdown file and report its structure."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Meeting document id.")),
		mcp.WithDestructiveHintAnnotation(false),
	), h.downloadNote)

	s.AddTool(mcp.NewTool("download_private_notes",
		mcp.WithDescription("Export the notes typed during a meeting to a Markdown file."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Meeting document id.")),
		mcp.WithDestructiveHintAnnotation(false),
	), h.downloadPrivateNotes)

	s.AddTool(mcp.NewTool("download_transcript",
		mcp.WithDescription("Export a meeting transcript, merged into speaker turns, to a Markdown file."),
		mcp.WithString("document_id", mcp.Required(), mcp.Description("Meeting document id.")),
		mcp.WithDestructiveHintAnnotation(false),
	), h.downloadTranscript)

	s.AddTool(mcp.NewTool("list_meeting_lists",
		mcp.WithDescription("List the user's meeting lists and the documents in each."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.listMeetingLists)

	s.AddTool(mcp.NewTool("list_workspaces",
		mcp.WithDescription("List the workspaces the user belongs to with role and plan."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.listWorkspaces)

	s.AddTool(mcp.NewTool("resolve_url",
		mcp.WithDescription("Resolve a meeting link, direct or shared, to its document id."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Meeting URL or document id.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.resolveURL)

	s.AddTool(mcp.NewTool("render_document",
		mcp.WithDescription("Render a notes document to Markdown with structural metrics."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Document source.")),
		mcp.WithString("format", mcp.Enum("json", "html", "markdown"), mcp.Description("Source format, json by default.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.renderDocument)

	s.AddTool(mcp.NewTool("render_transcript",
		mcp.WithDescription("Merge a JSON array of transcript segments into speaker turns and render them."),
		mcp.WithString("segments", mcp.Required(), mcp.Description("JSON array of transcript segments.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.renderTranscript)

	s.AddTool(mcp.NewTool("analyze_markdown",
		mcp.WithDescription("Count headings, sections, list lines, words and lines in Markdown."),
		mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown text.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.analyzeMarkdown)
}

type handlers struct {
	notes *notes.Service
	log   *slog.Logger
}

func (h *handlers) listMeetings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	meetings, err := h.notes.ListMeetings(ctx, notes.ListOptions{
		Limit:  req.GetInt("limit", 0),
		Offset: req.GetInt("offset", 0),
		Search: req.GetString("search", ""),
	})
	if err != nil {
		return h.fail("list_meetings", err), nil
	}
	return jsonResult(map[string]any{"meetings": meetings, "count": len(meetings)})
}

func (h *handlers) searchMeetings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	meetings, err := h.notes.SearchMeetings(ctx, query, req.GetInt("limit", 0))
	if err != nil {
		return h.fail("search_meetings", err), nil
	}
	return jsonResult(map[string]any{"meetings": meetings, "count": len(meetings)})
}

func (h *handlers) getNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	md, err := h.notes.GetNotes(ctx, id)
	if err != nil {
		return h.fail("get_notes", err), nil
	}
	return mcp.NewToolResultText(md), nil
}

func (h *handlers) downloadNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := h.notes.DownloadNote(ctx, id)
	if err != nil {
		return h.fail("download_note", err), nil
	}
	return jsonResult(res)
}

func (h *handlers) downloadPrivateNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := h.notes.DownloadPrivateNotes(ctx, id)
	if err != nil {
		return h.fail("download_private_notes", err), nil
	}
	return jsonResult(res)
}

func (h *handlers) downloadTranscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("document_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := h.notes.DownloadTranscript(ctx, id)
	if err != nil {
		return h.fail("download_transcript", err), nil
	}
	return jsonResult(res)
}

func (h *handlers) listMeetingLists(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lists, err := h.notes.ListMeetingLists(ctx)
	if err != nil {
		return h.fail("list_meeting_lists", err), nil
	}
	return jsonResult(map[string]any{"lists": lists})
}

func (h *handlers) listWorkspaces(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workspaces, err := h.notes.ListWorkspaces(ctx)
	if err != nil {
		return h.fail("list_workspaces", err), nil
	}
	return jsonResult(map[string]any{"workspaces": workspaces, "total_count": len(workspaces)})
}

func (h *handlers) resolveURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := h.notes.ResolveURL(ctx, raw)
	if err != nil {
		return h.fail("resolve_url", err), nil
	}
	return jsonResult(res)
}

func (h *handlers) renderDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := req.GetString("format", "json")
	contentType, ok := formatContentTypes[format]
	if !ok {
		return mcp.NewToolResultError("unsupported format " + format), nil
	}
	res, err := h.notes.RenderDocument([]byte(content), contentType)
	if err != nil {
		return h.fail("render_document", err), nil
	}
	return jsonResult(res)
}

func (h *handlers) renderTranscript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	segments, err := req.RequireString("segments")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := h.notes.RenderTranscript([]byte(segments))
	if err != nil {
		return h.fail("render_transcript", err), nil
	}
	return jsonResult(res)
}

func (h *handlers) analyzeMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	md, err := req.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(h.notes.AnalyzeMarkdown(md))
}

// fail turns a service error into a tool-level error result. Malformed
// input is expected traffic and logged at warn.
func (h *handlers) fail(tool string, err error) *mcp.CallToolResult {
	if notes.IsStructural(err) {
		h.log.Warn("tool rejected input", "tool", tool, "error", err)
	} else {
		h.log.Error("tool failed", "tool", tool, "error", err)
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
