package manifest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Cloner is implemented by values stores can hand out copies of.
type Cloner[T any] interface {
	Clone() T
}

// Fork is isolated in-memory overlay over a shared store. Reads observe only
// the overlay, so one execution context is not affected by other writers,
// while every modification is also mirrored to the base store where other
// readers see it.
type Fork[T Cloner[T]] struct {
	ID uuid.UUID

	base Store[T]
	log  *zap.Logger

	mu      sync.Mutex
	overlay T
}

// NewFork snapshots base store into new overlay.
func NewFork[T Cloner[T]](base Store[T], log *zap.Logger) (*Fork[T], error) {
	if log == nil {
		log = zap.NewNop()
	}
	v, err := base.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to snapshot store: %w", err)
	}
	id := uuid.New()
	f := &Fork[T]{
		ID:      id,
		base:    base,
		log:     log.Named("fork").With(zap.Stringer("id", id)),
		overlay: v.Clone(),
	}
	f.log.Debug("Fork created")
	return f, nil
}

func (f *Fork[T]) Read() (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlay.Clone(), nil
}

// Update mirrors modification to base store first and then applies the same
// fn to overlay, fn must not depend on anything but its argument.
func (f *Fork[T]) Update(fn func(*T) error) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero T
	if _, err := f.base.Update(fn); err != nil {
		return zero, fmt.Errorf("unable to mirror update: %w", err)
	}
	next := f.overlay.Clone()
	if err := fn(&next); err != nil {
		if errors.Is(err, ErrNoChange) {
			return f.overlay.Clone(), nil
		}
		return zero, err
	}
	f.overlay = next
	return next.Clone(), nil
}

func (f *Fork[T]) Write(v T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.base.Write(v); err != nil {
		return fmt.Errorf("unable to mirror write: %w", err)
	}
	f.overlay = v.Clone()
	return nil
}

// Reset clears the overlay only, shared store is left alone.
func (f *Fork[T]) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var zero T
	f.overlay = zero
	f.log.Debug("Fork reset")
	return nil
}

// Close detaches fork, base store stays open.
func (f *Fork[T]) Close() error {
	return nil
}
