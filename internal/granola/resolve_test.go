package granola

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

const meetingID = "0f8fad5b-d9cb-469f-a165-70867728950e"

func newShareServer(t *testing.T) (*Client, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/t/abc", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/d/"+meetingID, http.StatusFound)
	})
	mux.HandleFunc("/t/private", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
	mux.HandleFunc("/d/", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html></html>")
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>sign in</html>")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	c := NewClient(Options{
		BaseURL:    srv.URL,
		Tokens:     StaticToken("tok"),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		ShareHosts: []string{u.Hostname()},
	})
	return c, srv
}

func TestResolveURL(t *testing.T) {
	c, srv := newShareServer(t)
	ctx := context.Background()

	tests := []struct {
		name         string
		raw          string
		wantType     string
		wantRedirect bool
	}{
		{"bare id", meetingID, URLTypeDirect, false},
		{"direct link", srv.URL + "/d/" + meetingID, URLTypeDirect, false},
		{"direct link with trailing segment", srv.URL + "/d/" + meetingID + "/summary", URLTypeDirect, false},
		{"sharing link", srv.URL + "/t/abc", URLTypeSharing, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.ResolveURL(ctx, tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.DocumentID != meetingID || res.URLType != tt.wantType || res.ResolvedFromRedirect != tt.wantRedirect {
				t.Errorf("unexpected result %+v", res)
			}
			if res.OriginalURL != tt.raw {
				t.Errorf("original url %q, want %q", res.OriginalURL, tt.raw)
			}
		})
	}

	if c.Stats().Count != 1 {
		t.Errorf("expected only the sharing link to make a request, got %d", c.Stats().Count)
	}
}

func TestResolveURL_Failures(t *testing.T) {
	c, srv := newShareServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"not a url", "meeting notes", ErrInvalidURL},
		{"other host", "https://example.com/d/" + meetingID, ErrInvalidURL},
		{"ftp scheme", "ftp://" + srv.Listener.Addr().String() + "/d/" + meetingID, ErrInvalidURL},
		{"redirect to sign in", srv.URL + "/t/private", ErrNotFound},
		{"unknown sharing link", srv.URL + "/t/missing", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := c.ResolveURL(ctx, tt.raw); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDocumentIDFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"/d/" + meetingID, meetingID, true},
		{"/workspace/d/" + meetingID, meetingID, true},
		{"/d/not-an-id", "", false},
		{"/t/" + meetingID, "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := DocumentIDFromPath(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("DocumentIDFromPath(%q) = %q, %v", tt.path, got, ok)
		}
	}
}

func TestListWorkspaces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/get-workspaces" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `{"workspaces":[
			{"workspace":{"workspace_id":"w1","slug":"acme","display_name":"Acme","is_locked":false,
			 "created_at":"2024-01-01T00:00:00Z","privacy_mode_enabled":true,"logo_url":null,"deleted_at":null},
			 "role":"admin","plan_type":"pro"}
		]}`)
	})

	ws, err := c.ListWorkspaces(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ws) != 1 {
		t.Fatalf("expected 1 workspace, got %d", len(ws))
	}
	if ws[0].Workspace.DisplayName != "Acme" || ws[0].Role != "admin" || !ws[0].Workspace.PrivacyModeEnabled {
		t.Errorf("unexpected workspace %+v", ws[0])
	}
}
