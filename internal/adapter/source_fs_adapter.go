// Package adapter contains the infrastructure adapters of the treedelta CLI:
// file system access, tree front ends and report persistence.
package adapter

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	m "treedelta.dev/pkg/treedelta/internal/model"
)

// SourceFSAdapter hides file system access from the domain layer so the
// workflow can run against an in-memory file system in tests.
type SourceFSAdapter interface {
	// FileInfo returns metadata for path.
	FileInfo(path m.Path) (os.FileInfo, error)

	// ReadFile loads a file.
	ReadFile(path m.Path) ([]byte, error)

	// Load reads a file and describes it with its size and SHA-256 hash.
	Load(path m.Path) (*m.File, []byte, error)

	// Pairs lines up the regular files of two directory trees by their path
	// relative to each root. Files for which keep returns false are skipped,
	// as are hidden directories. The result is sorted by relative path.
	Pairs(src, dst m.Path, keep func(m.Path) bool) ([]m.FilePair, error)
}

// LocalSourceFSAdapter implements SourceFSAdapter on top of an afero file
// system.
type LocalSourceFSAdapter struct {
	fs afero.Fs
}

// NewLocalSourceFSAdapter returns an adapter backed by the operating system.
func NewLocalSourceFSAdapter() *LocalSourceFSAdapter {
	return NewSourceFSAdapter(afero.NewOsFs())
}

// NewSourceFSAdapter returns an adapter backed by fs.
func NewSourceFSAdapter(fs afero.Fs) *LocalSourceFSAdapter {
	return &LocalSourceFSAdapter{fs: fs}
}

// FileInfo returns metadata for the given path.
func (a *LocalSourceFSAdapter) FileInfo(path m.Path) (os.FileInfo, error) {
	return a.fs.Stat(string(path))
}

// ReadFile loads file contents.
func (a *LocalSourceFSAdapter) ReadFile(path m.Path) ([]byte, error) {
	return afero.ReadFile(a.fs, string(path))
}

// Load reads path and fingerprints it.
func (a *LocalSourceFSAdapter) Load(path m.Path) (*m.File, []byte, error) {
	content, err := a.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	return &m.File{
		Path: path,
		Hash: fmt.Sprintf("%x", sha256.Sum256(content)),
		Size: int64(len(content)),
	}, content, nil
}

// Pairs walks both roots and joins their files by relative path.
func (a *LocalSourceFSAdapter) Pairs(src, dst m.Path, keep func(m.Path) bool) ([]m.FilePair, error) {
	srcFiles, err := a.files(src, keep)
	if err != nil {
		return nil, err
	}

	dstFiles, err := a.files(dst, keep)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(srcFiles)+len(dstFiles))
	for name := range srcFiles {
		names = append(names, name)
	}

	for name := range dstFiles {
		if _, ok := srcFiles[name]; !ok {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	pairs := make([]m.FilePair, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, m.FilePair{
			Name:        name,
			Source:      srcFiles[name],
			Destination: dstFiles[name],
		})
	}

	return pairs, nil
}

func (a *LocalSourceFSAdapter) files(root m.Path, keep func(m.Path) bool) (map[string]*m.File, error) {
	rootStr := string(root)
	files := map[string]*m.File{}

	err := afero.Walk(a.fs, rootStr, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != rootStr && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}

			return nil
		}

		if !info.Mode().IsRegular() || (keep != nil && !keep(m.Path(path))) {
			return nil
		}

		rel, err := filepath.Rel(rootStr, path)
		if err != nil {
			return err
		}

		files[filepath.ToSlash(rel)] = &m.File{Path: m.Path(path), Size: info.Size()}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return files, nil
}
