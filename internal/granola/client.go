package granola

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dgallion1/meetnotes/internal/transcript"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sethvargo/go-retry"
	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "https://api.granola.ai"

// Endpoints of the notes service, relative to the base URL.
const (
	EndpointDocuments      = "v2/get-documents"
	EndpointDocumentsBatch = "v1/get-documents-batch"
	EndpointPanels         = "v1/get-document-panels"
	EndpointTranscript     = "v1/get-document-transcript"
	EndpointLists          = "v2/get-document-lists"
	EndpointWorkspaces     = "v1/get-workspaces"
)

// Observer receives one call per upstream attempt. status is the HTTP status
// code or "error" for transport failures.
type Observer interface {
	ObserveUpstream(endpoint, status string, d time.Duration)
}

type Options struct {
	BaseURL       string
	Timeout       time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
	CacheSize     int
	CacheTTL      time.Duration
	Tokens        TokenSource
	Observer      Observer
	Logger        *slog.Logger

	// ShareHosts limits which hosts ResolveURL accepts. Empty means
	// DefaultShareHosts.
	ShareHosts []string
}

// Client calls the notes service API. Documents are cached briefly by id so
// repeated lookups of one meeting cost one round trip.
type Client struct {
	http       *resty.Client
	shareHosts []string
	tokens     TokenSource
	observer   Observer
	log        *slog.Logger
	attempts   uint64
	backoff    time.Duration
	docs       *expirable.LRU[string, Document]
	stats      *LatencyStats
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = 500 * time.Millisecond
	}
	if opts.RetryAttempts < 0 {
		opts.RetryAttempts = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.ShareHosts) == 0 {
		opts.ShareHosts = DefaultShareHosts
	}

	c := &Client{
		http: resty.New().
			SetBaseURL(opts.BaseURL).
			SetTimeout(opts.Timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		shareHosts: opts.ShareHosts,
		tokens:     opts.Tokens,
		observer:   opts.Observer,
		log:        opts.Logger,
		attempts:   uint64(opts.RetryAttempts),
		backoff:    opts.RetryBackoff,
		stats:      NewLatencyStats(time.Hour),
	}
	if opts.CacheSize > 0 {
		c.docs = expirable.NewLRU[string, Document](opts.CacheSize, nil, opts.CacheTTL)
	}
	return c
}

// Stats returns the rolling upstream latency aggregate.
func (c *Client) Stats() StatsSnapshot {
	return c.stats.Snapshot()
}

// ListDocuments returns one page of documents, newest first. Only pages
// fetched with includePanel are cached, since GetDocument callers rely on
// LastViewedPanel.
func (c *Client) ListDocuments(ctx context.Context, limit, offset int, includePanel bool) ([]Document, error) {
	body, err := c.post(ctx, EndpointDocuments, map[string]any{
		"limit":                     limit,
		"offset":                    offset,
		"include_last_viewed_panel": includePanel,
	})
	if err != nil {
		return nil, err
	}

	var resp documentsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode documents: %w", err)
	}
	if includePanel {
		c.remember(resp.Docs)
	}
	return resp.Docs, nil
}

// GetDocument fetches a single document, from cache when fresh.
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	if c.docs != nil {
		if doc, ok := c.docs.Get(id); ok {
			return &doc, nil
		}
	}

	body, err := c.post(ctx, EndpointDocumentsBatch, map[string]any{
		"document_ids":              []string{id},
		"include_last_viewed_panel": true,
	})
	if err != nil {
		return nil, err
	}

	var resp documentsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode documents batch: %w", err)
	}
	for i := range resp.Docs {
		if resp.Docs[i].ID == id {
			c.remember(resp.Docs[i : i+1])
			return &resp.Docs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// GetPanels returns every panel attached to a document.
func (c *Client) GetPanels(ctx context.Context, documentID string) ([]Panel, error) {
	body, err := c.post(ctx, EndpointPanels, map[string]any{"document_id": documentID})
	if err != nil {
		return nil, err
	}
	var panels []Panel
	if err := json.Unmarshal(body, &panels); err != nil {
		return nil, fmt.Errorf("decode panels: %w", err)
	}
	return panels, nil
}

// GetTranscript returns a document's transcript segments in source order.
// Segments failing validation are reported as a *doctree.StructuralError.
func (c *Client) GetTranscript(ctx context.Context, documentID string) ([]transcript.Segment, error) {
	body, err := c.post(ctx, EndpointTranscript, map[string]any{"document_id": documentID})
	if err != nil {
		return nil, err
	}
	return transcript.Decode(body)
}

// ListLists returns the user's meeting lists. The service has returned both
// a bare array and a {"lists": [...]} wrapper, and lists reference
// documents either by id array or by embedded document objects.
func (c *Client) ListLists(ctx context.Context) ([]DocumentList, error) {
	body, err := c.post(ctx, EndpointLists, map[string]any{})
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.New("decode lists: invalid json")
	}

	root := gjson.ParseBytes(body)
	if wrapped := root.Get("lists"); wrapped.Exists() {
		root = wrapped
	}

	var lists []DocumentList
	root.ForEach(func(_, v gjson.Result) bool {
		l := DocumentList{
			ID:          v.Get("id").String(),
			Title:       v.Get("title").String(),
			Description: v.Get("description").String(),
			CreatedAt:   v.Get("created_at").String(),
			DocumentIDs: []string{},
		}
		for _, id := range v.Get("document_ids").Array() {
			l.DocumentIDs = append(l.DocumentIDs, id.String())
		}
		for _, doc := range v.Get("documents").Array() {
			l.DocumentIDs = append(l.DocumentIDs, doc.Get("id").String())
		}
		lists = append(lists, l)
		return true
	})
	return lists, nil
}

// ListWorkspaces returns the workspaces the user belongs to, with their role
// and plan in each.
func (c *Client) ListWorkspaces(ctx context.Context) ([]WorkspaceMembership, error) {
	body, err := c.post(ctx, EndpointWorkspaces, map[string]any{})
	if err != nil {
		return nil, err
	}
	var resp workspacesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode workspaces: %w", err)
	}
	return resp.Workspaces, nil
}

func (c *Client) remember(docs []Document) {
	if c.docs == nil {
		return
	}
	for _, d := range docs {
		c.docs.Add(d.ID, d)
	}
}

// post sends a JSON request, retrying 429, 5xx and transport failures with
// exponential backoff.
func (c *Client) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	if c.tokens == nil {
		return nil, fmt.Errorf("%w: no token source configured", ErrAuth)
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	log := c.log.With("endpoint", endpoint)
	backoff := retry.WithMaxRetries(c.attempts, retry.NewExponential(c.backoff))

	var out []byte
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		start := time.Now()
		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetBody(payload).
			Post(endpoint)
		elapsed := time.Since(start)

		if err != nil {
			c.record(endpoint, "error", elapsed, true)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("upstream transport error", "error", err, "duration_ms", elapsed.Milliseconds())
			return retry.RetryableError(&RetryableError{Message: err.Error()})
		}

		code := resp.StatusCode()
		c.record(endpoint, strconv.Itoa(code), elapsed, resp.IsError())

		switch {
		case code == http.StatusTooManyRequests || code >= 500:
			log.Warn("upstream retryable status", "status", code, "duration_ms", elapsed.Milliseconds())
			return retry.RetryableError(&RetryableError{StatusCode: code, Message: resp.String()})
		case code == http.StatusUnauthorized || code == http.StatusForbidden:
			return fmt.Errorf("%w: %s rejected token (status %d)", ErrAuth, endpoint, code)
		case code == http.StatusNotFound:
			return fmt.Errorf("%w: %s", ErrNotFound, endpoint)
		case resp.IsError():
			return &StatusError{Endpoint: endpoint, StatusCode: code, Body: resp.String()}
		}

		log.Debug("upstream call", "status", code, "duration_ms", elapsed.Milliseconds())
		out = resp.Body()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) record(endpoint, status string, d time.Duration, failed bool) {
	c.stats.Record(d, failed)
	if c.observer != nil {
		c.observer.ObserveUpstream(endpoint, status, d)
	}
}
