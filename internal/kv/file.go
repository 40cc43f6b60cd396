package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	json "github.com/goccy/go-json"
)

// FileStore holds the whole keyspace in memory and rewrites a single
// compressed JSON snapshot on every mutation. A mutation only becomes
// visible once the snapshot has been renamed into place.
type FileStore struct {
	mu         sync.RWMutex
	path       string
	data       map[string]string
	compressor Compressor
	closed     bool
}

var _ Store = (*FileStore)(nil)

func OpenFileStore(path string, compressor Compressor) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	fs := &FileStore{
		path:       path,
		data:       make(map[string]string),
		compressor: compressor,
	}
	if err := fs.load(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) load() error {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := fs.compressor.Decompress(raw)
	if err != nil {
		return fmt.Errorf("failed to decompress %s: %w", fs.path, err)
	}

	if err := json.Unmarshal(decompressed, &fs.data); err != nil {
		return fmt.Errorf("failed to decode %s: %w", fs.path, err)
	}
	if fs.data == nil {
		fs.data = make(map[string]string)
	}
	return nil
}

// persist writes next atomically: tmp file, fsync, rename.
func (fs *FileStore) persist(next map[string]string) error {
	jsonData, err := json.Marshal(next)
	if err != nil {
		return err
	}
	data, err := fs.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fs.path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fs.path)
}

func (fs *FileStore) snapshot() map[string]string {
	next := make(map[string]string, len(fs.data)+1)
	for k, v := range fs.data {
		next[k] = v
	}
	return next
}

func (fs *FileStore) Get(_ context.Context, key string) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if fs.closed {
		return "", ErrClosed
	}
	v, ok := fs.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (fs *FileStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrClosed
	}

	next := fs.snapshot()
	next[key] = value
	if err := fs.persist(next); err != nil {
		return fmt.Errorf("failed to persist %s: %w", fs.path, err)
	}
	fs.data = next
	return nil
}

func (fs *FileStore) MultiRemove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return ErrClosed
	}

	next := fs.snapshot()
	changed := false
	for _, k := range keys {
		if _, ok := next[k]; ok {
			delete(next, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := fs.persist(next); err != nil {
		return fmt.Errorf("failed to persist %s: %w", fs.path, err)
	}
	fs.data = next
	return nil
}

func (fs *FileStore) Keys(_ context.Context) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if fs.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(fs.data))
	for k := range fs.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return nil
	}
	fs.closed = true
	fs.compressor.Close()
	return nil
}
