package granola

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

// TokenSource supplies the bearer token for notes service calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed access token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", fmt.Errorf("%w: empty access token", ErrAuth)
	}
	return string(t), nil
}

// FileTokenSource reads the desktop app's session file on every call, so a
// token refreshed by the app is picked up without a restart.
type FileTokenSource struct {
	Fs   afero.Fs
	Path string
}

// NewFileTokenSource reads path from the OS filesystem.
func NewFileTokenSource(path string) *FileTokenSource {
	return &FileTokenSource{Fs: afero.NewOsFs(), Path: path}
}

// DefaultAuthFile is where the desktop app stores its session on macOS.
func DefaultAuthFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Application Support", "Granola", "supabase.json")
}

func (s *FileTokenSource) Token(ctx context.Context) (string, error) {
	data, err := afero.ReadFile(s.Fs, s.Path)
	if err != nil {
		return "", fmt.Errorf("%w: read auth file %s: %v", ErrAuth, s.Path, err)
	}
	return ParseAccessToken(data)
}

// ParseAccessToken extracts the access token from a session file. The
// workos_tokens field is usually a JSON document encoded as a string, but an
// embedded object is accepted too.
func ParseAccessToken(data []byte) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("%w: auth file is not valid json", ErrAuth)
	}
	tokens := gjson.GetBytes(data, "workos_tokens")
	if !tokens.Exists() {
		return "", fmt.Errorf("%w: no workos_tokens in auth file", ErrAuth)
	}

	raw := tokens.String()
	if tokens.IsObject() {
		raw = tokens.Raw
	}
	access := gjson.Get(raw, "access_token")
	if access.String() == "" {
		return "", fmt.Errorf("%w: no access_token in workos_tokens", ErrAuth)
	}
	return access.String(), nil
}
