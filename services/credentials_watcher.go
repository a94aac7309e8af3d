package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/itish2003/searchdoc/config"
)

// UserReloader receives the user table whenever credentials.yml changes.
type UserReloader interface {
	ReloadUsers(users []config.UserCredential)
}

// CredentialsWatcher reloads users when credentials.yml is rewritten. API keys
// are only read at start-up.
type CredentialsWatcher struct {
	path     string
	target   UserReloader
	getenv   func(string) string
	log      *zap.Logger
	lastHash string
	done     chan struct{}
}

// NewCredentialsWatcher creates a watcher for the credentials file at path.
// Reloaded users are handed to target.
func NewCredentialsWatcher(path string, target UserReloader, getenv func(string) string, log *zap.Logger) *CredentialsWatcher {
	if getenv == nil {
		getenv = os.Getenv
	}
	w := &CredentialsWatcher{
		path:   filepath.Clean(path),
		target: target,
		getenv: getenv,
		log:    log,
		done:   make(chan struct{}),
	}
	if hash, err := calculateFileHash(w.path); err == nil {
		w.lastHash = hash
	}
	return w
}

// Start watches the file's directory, so editors that replace the file by
// rename are still picked up. The watch stops when ctx is cancelled.
func (w *CredentialsWatcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.log.Info("watching credentials file", zap.String("path", w.path))

	go func() {
		defer close(w.done)
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != w.path {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					w.reload()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				w.log.Warn("credentials watcher error", zap.Error(err))
			case <-ctx.Done():
				w.log.Info("credentials watcher stopped")
				return
			}
		}
	}()
	return nil
}

// Done is closed once the watch loop has exited.
func (w *CredentialsWatcher) Done() <-chan struct{} { return w.done }

func (w *CredentialsWatcher) reload() {
	hash, err := calculateFileHash(w.path)
	if err != nil {
		w.log.Warn("could not hash credentials file", zap.String("path", w.path), zap.Error(err))
		return
	}
	if hash == w.lastHash {
		return
	}

	creds, err := config.LoadCredentials(w.path)
	if err != nil {
		w.log.Error("failed to reload credentials, keeping previous users", zap.Error(err))
		return
	}
	// Editors often truncate before writing; an empty table is never applied.
	if len(creds.Users) == 0 {
		w.log.Warn("credentials file has no users, keeping previous users", zap.String("path", w.path))
		return
	}
	creds.ApplyEnv(w.getenv)
	w.lastHash = hash
	w.target.ReloadUsers(creds.Users)
	w.log.Info("credentials reloaded", zap.Int("users", len(creds.Users)))
}

func calculateFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
