package secrets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileProvider reads secrets from a flat YAML map of name to value, e.g.
//
//	concur-token-url: https://us.api.concursolutions.com/oauth2/v0/token
//	concur-refresh-token: ...
//
// The file is re-read on every lookup so out-of-band edits take effect.
type FileProvider struct {
	path string
	mu   sync.Mutex
}

// NewFileProvider creates a FileProvider for path. A missing file is not an
// error until a lookup is made.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Name implements Provider.
func (*FileProvider) Name() string { return "file" }

// Path returns the backing file path.
func (p *FileProvider) Path() string { return p.path }

// Secret implements Provider.
func (p *FileProvider) Secret(_ context.Context, name string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	values, err := p.load()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s (no secrets file)", ErrSecretNotFound, name)
		}
		return "", fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	v, ok := values[name]
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return v, nil
}

// SetSecret writes name into the file, creating it if needed. The file is
// replaced atomically with 0600 permissions.
func (p *FileProvider) SetSecret(_ context.Context, name, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	values, err := p.load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	values[name] = value

	data, err := yaml.Marshal(values)
	if err != nil {
		return fmt.Errorf("marshaling secrets file: %w", err)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".secrets-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return fmt.Errorf("replacing %s: %w", p.path, err)
	}
	return nil
}

func (p *FileProvider) load() (map[string]string, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", p.path, err)
	}
	return values, nil
}
