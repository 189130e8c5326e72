package blob

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutOpenReplace(t *testing.T) {
	fs := LocalFS{Root: t.TempDir()}

	rel, err := fs.Put("2025/schedule.html", strings.NewReader("<p>one</p>"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("2025", "schedule.html"), rel)
	assert.True(t, fs.Exists(rel))

	_, err = fs.Put(rel, strings.NewReader("<p>two</p>"))
	require.NoError(t, err)

	f, err := fs.Open(rel)
	require.NoError(t, err)
	defer f.Close()
	body, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "<p>two</p>", string(body))

	entries, err := os.ReadDir(filepath.Join(fs.Root, "2025"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestRejectsPathsOutsideRoot(t *testing.T) {
	fs := LocalFS{Root: t.TempDir()}

	_, err := fs.Put("../escape.html", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrOutsideRoot)
	_, err = fs.Put("/etc/escape.html", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrOutsideRoot)
	assert.False(t, fs.Exists("../escape.html"))
	assert.False(t, fs.Exists("missing.html"))
}
