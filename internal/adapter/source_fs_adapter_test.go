package adapter

import (
	"crypto/sha256"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "treedelta.dev/pkg/treedelta/internal/model"
)

func memFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()

	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}

	return fs
}

func TestLocalSourceFSAdapter_Load(t *testing.T) {
	content := "package main\nfunc main() {}\n"
	a := NewSourceFSAdapter(memFS(t, map[string]string{"/src/main.go": content}))

	file, got, err := a.Load("/src/main.go")
	require.NoError(t, err)

	assert.Equal(t, content, string(got))
	assert.Equal(t, &m.File{
		Path: "/src/main.go",
		Hash: fmt.Sprintf("%x", sha256.Sum256([]byte(content))),
		Size: int64(len(content)),
	}, file)

	_, _, err = a.Load("/src/missing.go")
	assert.Error(t, err)
}

func TestLocalSourceFSAdapter_Pairs(t *testing.T) {
	fs := memFS(t, map[string]string{
		"/old/a.go":          "a",
		"/old/gone.go":       "g",
		"/old/pkg/b.go":      "b",
		"/old/notes.txt":     "n",
		"/old/.git/HEAD.go":  "h",
		"/new/a.go":          "a2",
		"/new/pkg/b.go":      "b2",
		"/new/pkg/fresh.go":  "f",
		"/new/.cache/x.go":   "x",
	})
	a := NewSourceFSAdapter(fs)

	keep := func(p m.Path) bool { return filepath.Ext(string(p)) == ".go" }

	pairs, err := a.Pairs("/old", "/new", keep)
	require.NoError(t, err)

	var names []string
	for _, p := range pairs {
		names = append(names, p.Name)
	}

	assert.Equal(t, []string{"a.go", "gone.go", "pkg/b.go", "pkg/fresh.go"}, names)

	assert.Equal(t, m.Path("/old/a.go"), pairs[0].Source.Path)
	assert.Equal(t, m.Path("/new/a.go"), pairs[0].Destination.Path)
	assert.Equal(t, int64(2), pairs[0].Destination.Size)
	assert.Nil(t, pairs[1].Destination)
	assert.Nil(t, pairs[3].Source)

	_, err = a.Pairs("/old", "/missing", keep)
	assert.Error(t, err)
}
