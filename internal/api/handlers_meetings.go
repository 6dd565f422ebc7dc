package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dgallion1/meetnotes/internal/notes"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), 0)
	if err != nil {
		jsonError(w, "invalid limit: "+err.Error(), http.StatusBadRequest)
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil {
		jsonError(w, "invalid offset: "+err.Error(), http.StatusBadRequest)
		return
	}

	meetings, err := s.notes.ListMeetings(r.Context(), notes.ListOptions{
		Limit:  limit,
		Offset: offset,
		Search: q.Get("search"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"meetings": meetings, "count": len(meetings)})
}

func (s *Server) handleGetNotes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	md, err := s.notes.GetNotes(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"document_id": id, "markdown": md})
}

func (s *Server) handleDownloadNote(w http.ResponseWriter, r *http.Request) {
	res, err := s.notes.DownloadNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleDownloadPrivateNotes(w http.ResponseWriter, r *http.Request) {
	res, err := s.notes.DownloadPrivateNotes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleDownloadTranscript(w http.ResponseWriter, r *http.Request) {
	res, err := s.notes.DownloadTranscript(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleListMeetingLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.notes.ListMeetingLists(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"lists": lists})
}

func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := s.notes.ListWorkspaces(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"workspaces": workspaces, "total_count": len(workspaces)})
}

func (s *Server) handleResolveURL(w http.ResponseWriter, r *http.Request) {
	res, err := s.notes.ResolveURL(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func intParam(v string, fallback int) (int, error) {
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", v)
	}
	return n, nil
}
