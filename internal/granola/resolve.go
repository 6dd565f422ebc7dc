package granola

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultShareHosts are the hosts that serve meeting links.
var DefaultShareHosts = []string{"notes.granola.ai", "app.granola.ai", "granola.ai"}

const endpointShareLink = "share-link"

const (
	URLTypeDirect  = "direct"
	URLTypeSharing = "sharing"
)

// ResolvedURL maps a meeting link onto a document id.
type ResolvedURL struct {
	DocumentID           string `json:"document_id"`
	URLType              string `json:"url_type"`
	OriginalURL          string `json:"original_url"`
	ResolvedFromRedirect bool   `json:"resolved_from_redirect"`
}

// ResolveURL returns the document id behind a meeting link. Direct links
// (/d/<id>) and bare ids resolve without a request; sharing links are
// followed through their redirects until a direct link appears.
func (c *Client) ResolveURL(ctx context.Context, raw string) (*ResolvedURL, error) {
	raw = strings.TrimSpace(raw)
	if id, err := uuid.Parse(raw); err == nil {
		return &ResolvedURL{DocumentID: id.String(), URLType: URLTypeDirect, OriginalURL: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	if !c.allowedHost(u.Hostname()) {
		return nil, fmt.Errorf("%w: host %s is not a notes host", ErrInvalidURL, u.Hostname())
	}

	if id, ok := DocumentIDFromPath(u.Path); ok {
		return &ResolvedURL{DocumentID: id, URLType: URLTypeDirect, OriginalURL: raw}, nil
	}

	final, err := c.follow(ctx, raw)
	if err != nil {
		return nil, err
	}
	id, ok := DocumentIDFromPath(final.Path)
	if !ok {
		return nil, fmt.Errorf("%w: %s did not redirect to a meeting", ErrNotFound, raw)
	}
	c.log.Debug("resolved sharing link", "url", raw, "document_id", id)
	return &ResolvedURL{
		DocumentID:           id,
		URLType:              URLTypeSharing,
		OriginalURL:          raw,
		ResolvedFromRedirect: true,
	}, nil
}

// follow requests a sharing link and returns the URL the redirects end on.
func (c *Client) follow(ctx context.Context, raw string) (*url.URL, error) {
	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "text/html").
		Get(raw)
	elapsed := time.Since(start)
	if err != nil {
		c.record(endpointShareLink, "error", elapsed, true)
		return nil, &RetryableError{Message: err.Error()}
	}

	code := resp.StatusCode()
	c.record(endpointShareLink, strconv.Itoa(code), elapsed, resp.IsError())
	if code == http.StatusNotFound || resp.RawResponse == nil || resp.RawResponse.Request == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, raw)
	}
	if resp.IsError() {
		return nil, &StatusError{Endpoint: endpointShareLink, StatusCode: code, Body: resp.String()}
	}
	return resp.RawResponse.Request.URL, nil
}

func (c *Client) allowedHost(host string) bool {
	host = strings.ToLower(host)
	for _, h := range c.shareHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// DocumentIDFromPath extracts the id from a direct meeting path such as
// /d/<id>. Ids must be UUIDs.
func DocumentIDFromPath(path string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] != "d" {
			continue
		}
		if id, err := uuid.Parse(parts[i+1]); err == nil {
			return id.String(), true
		}
	}
	return "", false
}
