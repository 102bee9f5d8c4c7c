package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	lockRetry = 10 * time.Millisecond
	// A lock file older than this is left over from a crashed writer.
	staleLock = 10 * time.Second
)

// File keeps all keys in one JSON object on disk. The file is re-read on
// every Get so edits by another process on the device are visible. Writers
// serialise through a sibling ".lock" file.
type File struct {
	mu   sync.Mutex
	path string
}

func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("kvstore: file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("kvstore: create dir: %w", err)
	}
	return &File{path: path}, nil
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.loadLocked()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *File) Set(ctx context.Context, key, value string) error {
	_, err := f.update(ctx, func(values map[string]string) bool {
		values[key] = value
		return true
	})
	return err
}

func (f *File) CompareAndSwap(ctx context.Context, key, old, next string) (bool, error) {
	return f.update(ctx, func(values map[string]string) bool {
		if values[key] != old {
			return false
		}
		values[key] = next
		return true
	})
}

// update runs fn on the current contents under both locks and saves them
// when fn reports a change.
func (f *File) update(ctx context.Context, fn func(map[string]string) bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	unlock, err := f.lockFile(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	values, err := f.loadLocked()
	if err != nil {
		// A corrupt file is replaced rather than blocking writes.
		var syntaxErr *json.SyntaxError
		if !errors.As(err, &syntaxErr) {
			return false, err
		}
		values = make(map[string]string)
	}
	if !fn(values) {
		return false, nil
	}
	if err := f.saveLocked(values); err != nil {
		return false, err
	}
	return true, nil
}

// lockFile takes the cross-process write lock, waiting until ctx is done.
func (f *File) lockFile(ctx context.Context) (func(), error) {
	path := f.path + ".lock"
	for {
		lock, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			lock.Close()
			return func() { _ = os.Remove(path) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("kvstore: lock %s: %w", f.path, err)
		}
		if info, statErr := os.Stat(path); statErr == nil && time.Since(info.ModTime()) > staleLock {
			_ = os.Remove(path)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("kvstore: lock %s: %w", f.path, ctx.Err())
		case <-time.After(lockRetry):
		}
	}
}

func (f *File) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := f.loadLocked()
	return err
}

// loadLocked reads the file. Caller must hold f.mu.
func (f *File) loadLocked() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("kvstore: read %s: %w", f.path, err)
	}
	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("kvstore: decode %s: %w", f.path, err)
	}
	return values, nil
}

// saveLocked writes through a temp file and rename. Caller must hold f.mu.
func (f *File) saveLocked(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".kvstore-*")
	if err != nil {
		return fmt.Errorf("kvstore: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("kvstore: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("kvstore: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("kvstore: rename: %w", err)
	}
	return nil
}
