package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// ErrClosed is returned by operations on closed store.
var ErrClosed = errors.New("store is closed")

// ErrNoChange may be returned by update function to indicate that value was
// not modified and does not have to be persisted.
var ErrNoChange = errors.New("no change")

// Store is durable value with atomic read-modify-write.
type Store[T any] interface {
	// Read returns last persisted value without locking. Absent, corrupt or
	// outdated data reads as zero value.
	Read() (T, error)
	// Update reads latest value under exclusive lock, applies fn and persists
	// the result. Concurrent updates are serialized, none is lost.
	Update(fn func(*T) error) (T, error)
	// Write replaces persisted value.
	Write(v T) error
	// Reset removes persisted value.
	Reset() error
	Close() error
}

// FileStore keeps value in a single file, exclusive lock is held on a
// separate lock file next to it so the data file can be replaced atomically.
type FileStore[T any] struct {
	path    string
	version int
	log     *zap.Logger

	mu   sync.Mutex
	lock *os.File
}

// OpenFile opens (creating directories if necessary) file store. Values are
// persisted with version tag, data with different version is discarded.
func OpenFile[T any](path string, version int, log *zap.Logger) (*FileStore[T], error) {
	if log == nil {
		log = zap.NewNop()
	}
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve store path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("unable to create store directory: %w", err)
	}
	lock, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to open lock file: %w", err)
	}
	return &FileStore[T]{
		path:    path,
		version: version,
		log:     log.Named("store").With(zap.String("path", path)),
		lock:    lock,
	}, nil
}

// Path returns data file location.
func (s *FileStore[T]) Path() string {
	return s.path
}

func (s *FileStore[T]) Read() (T, error) {
	s.mu.Lock()
	closed := s.lock == nil
	s.mu.Unlock()

	if closed {
		var zero T
		return zero, ErrClosed
	}
	return s.read()
}

func (s *FileStore[T]) read() (T, error) {
	var zero T

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return zero, nil
		}
		return zero, fmt.Errorf("unable to read store: %w", err)
	}
	if len(data) == 0 {
		return zero, nil
	}
	v, err := decode[T](s.version, data)
	if err != nil {
		// store is a rebuildable cache, start from scratch
		s.log.Warn("Discarding stored data", zap.Error(err))
		return zero, nil
	}
	return v, nil
}

// locked runs fn holding both process and file locks.
func (s *FileStore[T]) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lock == nil {
		return ErrClosed
	}
	if err := lockFile(s.lock); err != nil {
		return fmt.Errorf("unable to lock store: %w", err)
	}
	defer func() {
		if err := unlockFile(s.lock); err != nil {
			s.log.Error("Unable to unlock store", zap.Error(err))
		}
	}()
	return fn()
}

func (s *FileStore[T]) Update(fn func(*T) error) (T, error) {
	var result T
	err := s.locked(func() error {
		v, err := s.read()
		if err != nil {
			return err
		}
		if err := fn(&v); err != nil {
			if errors.Is(err, ErrNoChange) {
				result = v
				return nil
			}
			return err
		}
		if err := s.persist(v); err != nil {
			return err
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

func (s *FileStore[T]) Write(v T) error {
	return s.locked(func() error {
		return s.persist(v)
	})
}

func (s *FileStore[T]) Reset() error {
	return s.locked(func() error {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("unable to reset store: %w", err)
		}
		s.log.Debug("Store reset")
		return nil
	})
}

func (s *FileStore[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lock == nil {
		return nil
	}
	err := s.lock.Close()
	s.lock = nil
	return err
}

// persist writes value to temporary file and renames it over data file, so
// lock-free readers never observe partial writes.
func (s *FileStore[T]) persist(v T) error {
	data, err := encode(s.version, v)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("unable to create temporary file: %w", err)
	}
	defer func() {
		// no-op after successful rename
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to write store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("unable to sync store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to close store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("unable to replace store: %w", err)
	}
	s.log.Debug("Store persisted", zap.Int("bytes", len(data)))
	return nil
}
