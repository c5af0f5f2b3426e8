// Package pkg holds small generic utilities shared by treedelta's layers.
package pkg

import (
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/afero"
)

// ErrSpillClosed is returned when a closed spill is used.
var ErrSpillClosed = errors.New("file spill closed")

// FileSpill buffers an append-only sequence of items in a temporary file so
// long runs do not hold every item in memory.
type FileSpill[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Range(fn func(index uint64, item T) error) error
	// Close removes the backing file.
	Close() error
}

type fileSpill[T any] struct {
	fs      afero.Fs
	path    string
	file    afero.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
}

// NewFileSpill creates a spill file under dir on fs. An empty dir means the
// system temporary directory.
func NewFileSpill[T any](fs afero.Fs, dir string) (FileSpill[T], error) {
	if dir != "" {
		if err := fs.MkdirAll(dir, 0o750); err != nil {
			slog.Error("failed to create spill directory", "path", dir, "error", err)
			return nil, fmt.Errorf("create spill directory: %w", err)
		}
	}

	file, err := afero.TempFile(fs, dir, "spill-*.gob")
	if err != nil {
		slog.Error("failed to create spill file", "dir", dir, "error", err)
		return nil, fmt.Errorf("create spill file: %w", err)
	}

	slog.Debug("created file spill", "path", file.Name())

	return &fileSpill[T]{
		fs:      fs,
		path:    file.Name(),
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// Append implements FileSpill.
func (f *fileSpill[T]) Append(item T) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return ErrSpillClosed
	}

	if err := f.encoder.Encode(item); err != nil {
		slog.Error("failed to encode item", "path", f.path, "index", f.length, "error", err)
		return fmt.Errorf("encode item %d: %w", f.length, err)
	}

	f.length++

	return nil
}

// Path implements FileSpill.
func (f *fileSpill[T]) Path() string {
	return f.path
}

// Len implements FileSpill.
func (f *fileSpill[T]) Len() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.length
}

// Range implements FileSpill. Items are decoded one at a time in append
// order; fn errors stop the iteration and are returned as is.
func (f *fileSpill[T]) Range(fn func(index uint64, item T) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return ErrSpillClosed
	}

	file, err := f.fs.Open(f.path)
	if err != nil {
		return fmt.Errorf("open spill file: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close spill reader", "path", f.path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	for i := range f.length {
		var item T
		if err := decoder.Decode(&item); err != nil {
			slog.Error("failed to decode item", "path", f.path, "index", i, "error", err)
			return fmt.Errorf("decode item %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}

// Close implements FileSpill.
func (f *fileSpill[T]) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}

	err := f.file.Close()
	f.file = nil

	if rerr := f.fs.Remove(f.path); rerr != nil {
		err = errors.Join(err, rerr)
	}

	if err != nil {
		slog.Error("failed to release file spill", "path", f.path, "error", err)
		return fmt.Errorf("close file spill: %w", err)
	}

	slog.Debug("closed file spill", "path", f.path, "length", f.length)

	return nil
}
