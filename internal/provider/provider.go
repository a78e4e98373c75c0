package provider

import (
	"context"
	"errors"
)

// ErrNotFound indicates the requested file does not exist at the given ref.
var ErrNotFound = errors.New("file not found")

// File is the content of a repository file at a specific ref.
type File struct {
	Path    string
	Content string
	SHA     string
	Size    int
}

// Fetcher retrieves file content from a git hosting provider.
// Implementations are bound to a single owner/repo.
type Fetcher interface {
	// FetchFile downloads the file at path as of ref. Returns ErrNotFound
	// if the path does not exist at that ref.
	FetchFile(ctx context.Context, path, ref string) (*File, error)
}
