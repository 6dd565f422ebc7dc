// Package export manages the per-process directory that downloaded notes and
// transcripts are written to. Files expire after a TTL and everything is
// removed on Close.
package export

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"
	"github.com/spf13/afero"
)

// Kinds of exported files.
const (
	KindNote         = "note"
	KindPrivateNotes = "private_notes"
	KindTranscript   = "transcript"
)

const maxSlugLength = 100

// Entry describes one exported file.
type Entry struct {
	Path        string    `json:"path"`
	Kind        string    `json:"kind"`
	DocumentID  string    `json:"document_id"`
	Title       string    `json:"title"`
	SizeBytes   int       `json:"size_bytes"`
	ContentHash string    `json:"content_hash"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Gauge receives the number of tracked files after every change.
type Gauge interface {
	SetExportFiles(n int)
}

// Store is a thread-safe registry of exported files with TTL eviction.
type Store struct {
	fs      afero.Fs
	dir     string
	ownsDir bool
	ttl     time.Duration
	log     *slog.Logger
	gauge   Gauge
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*Entry

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Options struct {
	// Dir is created if missing. Empty means a fresh temporary directory
	// that Close removes.
	Dir    string
	TTL    time.Duration
	Logger *slog.Logger
	Gauge  Gauge
}

func New(fs afero.Fs, opts Options) (*Store, error) {
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Store{
		fs:      fs,
		dir:     opts.Dir,
		ttl:     opts.TTL,
		log:     opts.Logger,
		gauge:   opts.Gauge,
		now:     time.Now,
		entries: make(map[string]*Entry),
	}

	if s.dir == "" {
		dir, err := afero.TempDir(fs, "", "meetnotes-")
		if err != nil {
			return nil, fmt.Errorf("create export dir: %w", err)
		}
		s.dir = dir
		s.ownsDir = true
	} else if err := fs.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir %s: %w", s.dir, err)
	}
	return s, nil
}

// Dir is the directory files are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Write stores content for a document and registers it for expiry. A title
// already used by a different document gets a short id-derived suffix so
// neither export overwrites the other.
func (s *Store) Write(kind, documentID, title, content string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := Filename(title, kindSuffix(kind))
	path := filepath.Join(s.dir, base)
	if existing, ok := s.entries[path]; ok && existing.DocumentID != documentID {
		name := strings.TrimSuffix(base, ".md") + "-" + ContentHashHex([]byte(documentID))[:8] + ".md"
		path = filepath.Join(s.dir, name)
	}

	data := []byte(content)
	if err := afero.WriteFile(s.fs, path, data, 0o644); err != nil {
		return Entry{}, fmt.Errorf("write export %s: %w", path, err)
	}

	now := s.now()
	e := &Entry{
		Path:        path,
		Kind:        kind,
		DocumentID:  documentID,
		Title:       title,
		SizeBytes:   len(data),
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}
	s.entries[path] = e
	s.reportLocked()
	return *e, nil
}

// Get returns the entry for path if it is still tracked.
func (s *Store) Get(path string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[path]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// List returns all tracked entries, oldest first.
func (s *Store) List() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	slices.SortFunc(out, func(a, b Entry) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return out
}

// Cleanup removes expired files and returns how many were dropped.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for path, e := range s.entries {
		if now.Before(e.ExpiresAt) {
			continue
		}
		if err := s.fs.Remove(path); err != nil {
			s.log.Warn("remove expired export", "path", path, "error", err)
		}
		delete(s.entries, path)
		removed++
	}
	if removed > 0 {
		s.log.Debug("export cleanup", "removed", removed, "remaining", len(s.entries))
		s.reportLocked()
	}
	return removed
}

// Start launches the periodic cleanup loop.
func (s *Store) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Close stops the cleanup loop and removes every tracked file. A temporary
// directory created by New is removed with its contents.
func (s *Store) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for path := range s.entries {
		if err := s.fs.Remove(path); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.entries, path)
	}
	if s.ownsDir {
		if err := s.fs.RemoveAll(s.dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.reportLocked()
	return firstErr
}

func (s *Store) reportLocked() {
	if s.gauge != nil {
		s.gauge.SetExportFiles(len(s.entries))
	}
}

// Filename builds a safe Markdown filename from a meeting title.
func Filename(title, suffix string) string {
	base := slug.Make(title)
	if len(base) > maxSlugLength {
		base = strings.TrimRight(base[:maxSlugLength], "-")
	}
	if base == "" {
		base = "untitled"
	}
	if suffix != "" {
		base += "-" + suffix
	}
	return base + ".md"
}

func kindSuffix(kind string) string {
	switch kind {
	case KindPrivateNotes:
		return "private-notes"
	case KindTranscript:
		return "transcript"
	default:
		return ""
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
