package api

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// TokenSource supplies the bearer token attached to each request. An empty
// token means the viewer is anonymous.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed bearer token.
type StaticToken string

func (t StaticToken) Token() string { return strings.TrimSpace(string(t)) }

// FileToken reads the bearer token from a file and reloads it whenever the
// file is rewritten, so an external login helper can refresh credentials
// while the client runs.
type FileToken struct {
	path    string
	logger  *zap.Logger
	watcher *fsnotify.Watcher

	mu    sync.RWMutex
	token string

	done chan struct{}
}

// NewFileToken loads path and starts watching it. A missing file yields an
// anonymous token until the file appears.
func NewFileToken(path string, logger *zap.Logger) (*FileToken, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	f := &FileToken{path: abs, logger: logger, done: make(chan struct{})}
	if err := f.Reload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch token file: %w", err)
	}
	// Watch the directory: editors and login helpers replace the file.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch token file: %w", err)
	}
	f.watcher = watcher
	go f.watch()
	return f, nil
}

// Token returns the most recently loaded token.
func (f *FileToken) Token() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.token
}

// Reload re-reads the token file.
func (f *FileToken) Reload() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.set("")
		}
		return err
	}
	f.set(strings.TrimSpace(string(data)))
	return nil
}

// Close stops watching the file.
func (f *FileToken) Close() error {
	if f.watcher == nil {
		return nil
	}
	err := f.watcher.Close()
	<-f.done
	return err
}

func (f *FileToken) set(token string) {
	f.mu.Lock()
	f.token = token
	f.mu.Unlock()
}

func (f *FileToken) watch() {
	defer close(f.done)
	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				if err := f.Reload(); err != nil && !errors.Is(err, os.ErrNotExist) {
					f.logger.Warn("reload token file", zap.String("path", f.path), zap.Error(err))
					continue
				}
				f.logger.Debug("token file reloaded", zap.String("path", f.path))
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("token watcher", zap.Error(err))
		}
	}
}

// AccountFromToken extracts a stable account identifier from a JWT bearer
// token without verifying its signature. It checks the username, user_id and
// sub claims in that order and returns "" for opaque tokens.
func AccountFromToken(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	for _, key := range []string{"username", "user_id", "sub"} {
		if value := claimString(claims[key]); value != "" {
			return value
		}
	}
	return ""
}

func claimString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}
