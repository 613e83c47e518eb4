// Package storage downloads CSV snapshots and memoizes the decoded datasets.
//
// A Source knows how to read raw snapshot bytes by path. The Fetcher sits in
// front of a Source: it decodes, memoizes per path for the process lifetime,
// collapses concurrent first fetches of the same path, and falls back to the
// SnapshotCache when the Source is unreachable.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by a Source when the path does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Source reads raw snapshot bytes.
type Source interface {
	// Read returns the full payload stored at path.
	Read(ctx context.Context, path string) ([]byte, error)
	// Describe names the source for logs and error messages.
	Describe() string
}

// FetchError reports a failed download. It is never cached: the next
// interaction retries.
type FetchError struct {
	Path   string
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s from %s: %v", e.Path, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DirSource reads snapshots from a local directory, using the same relative
// paths as the data lake.
type DirSource struct {
	Root string
}

// NewDirSource creates a DirSource rooted at root.
func NewDirSource(root string) *DirSource {
	return &DirSource{Root: root}
}

// Describe implements Source.
func (s *DirSource) Describe() string {
	return "dir:" + s.Root
}

// Read implements Source.
func (s *DirSource) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	return data, nil
}

// resolve maps a slash-separated snapshot path into the root, refusing
// paths that climb out of it.
func (s *DirSource) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("snapshot path %q escapes %s", path, s.Root)
	}
	return filepath.Join(s.Root, clean), nil
}

// rel is the inverse of resolve: it turns a file under the root back into a
// snapshot path.
func (s *DirSource) rel(full string) (string, bool) {
	r, err := filepath.Rel(s.Root, full)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(r), true
}
