// Package blob writes rendered page snapshots under a local directory.
package blob

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

var ErrOutsideRoot = errors.New("path escapes snapshot root")

type LocalFS struct {
	Root string
}

func (l LocalFS) resolve(relPath string) (string, string, error) {
	clean := filepath.Clean(relPath)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", "", errors.Wrapf(ErrOutsideRoot, "%q", relPath)
	}
	return clean, filepath.Join(l.Root, clean), nil
}

// Put writes r to relPath, replacing any previous snapshot at that path.
// The file only appears once fully written.
func (l LocalFS) Put(relPath string, r io.Reader) (string, error) {
	clean, abs, err := l.resolve(relPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", errors.Wrap(err, "create snapshot dir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(abs), ".snapshot-*")
	if err != nil {
		return "", errors.Wrap(err, "create snapshot")
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "write snapshot")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "close snapshot")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", errors.Wrap(err, "chmod snapshot")
	}
	if err := os.Rename(tmp.Name(), abs); err != nil {
		return "", errors.Wrap(err, "move snapshot")
	}
	return clean, nil
}

func (l LocalFS) Open(relPath string) (*os.File, error) {
	_, abs, err := l.resolve(relPath)
	if err != nil {
		return nil, err
	}
	return os.Open(abs)
}

func (l LocalFS) Exists(relPath string) bool {
	_, abs, err := l.resolve(relPath)
	if err != nil {
		return false
	}
	_, err = os.Stat(abs)
	return err == nil
}
