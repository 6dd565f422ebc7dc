package parser

import (
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/dgallion1/meetnotes/internal/doctree"
)

// Parser converts raw document bytes into a typed document tree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Doc, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".json":     true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, maxDepth int) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".json":
		return &ProseMirrorParser{MaxDepth: maxDepth}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// ForContentType returns the parser for an HTTP Content-Type header.
// An empty content type is treated as ProseMirror JSON.
func ForContentType(contentType string, maxDepth int) (Parser, error) {
	if contentType == "" {
		return &ProseMirrorParser{MaxDepth: maxDepth}, nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("invalid content type %q: %w", contentType, err)
	}
	switch mt {
	case "application/json":
		return &ProseMirrorParser{MaxDepth: maxDepth}, nil
	case "text/markdown", "text/x-markdown", "text/plain":
		return &MarkdownParser{}, nil
	case "text/html":
		return &HTMLParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported content type: %s", mt)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ProseMirrorParser handles the notes service's native JSON documents.
type ProseMirrorParser struct {
	MaxDepth int
}

func (p *ProseMirrorParser) Parse(r io.Reader, filename string) (*doctree.Doc, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return doctree.Decoder{MaxDepth: p.MaxDepth}.Decode(data)
}
