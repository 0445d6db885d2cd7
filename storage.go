package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

// Storage keys for the three logical records the engine persists.
const (
	StorageKeyCredential = "openai_api_key"
	StorageKeyProfile    = "user_profile"
	StorageKeySessions   = "mentoring_sessions"
)

// Store is the opaque key-value persistence collaborator. Values are whole
// JSON documents; Get reports presence explicitly so absence is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// FileStore keeps each key in its own JSON file under a base directory.
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

func NewFileStore(basePath string) (*FileStore, error) {
	if basePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		basePath = filepath.Join(homeDir, ".first-issue-mentor")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &FileStore{basePath: basePath}, nil
}

func (fs *FileStore) BasePath() string {
	return fs.basePath
}

var storageKeyPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func (fs *FileStore) keyPath(key string) (string, error) {
	if !storageKeyPattern.MatchString(key) {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return filepath.Join(fs.basePath, key+".json"), nil
}

func (fs *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	path, err := fs.keyPath(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return data, true, nil
}

func (fs *FileStore) Set(ctx context.Context, key string, value []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path, err := fs.keyPath(key)
	if err != nil {
		return err
	}

	return os.WriteFile(path, value, 0644)
}
