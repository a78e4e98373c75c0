package resolver

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/msoria/hookfetch/internal/event"
	"github.com/msoria/hookfetch/internal/metrics"
	"github.com/msoria/hookfetch/internal/provider"
)

// codeExtensions is the set of file extensions worth downloading.
var codeExtensions = map[string]bool{
	"py":   true,
	"js":   true,
	"ts":   true,
	"java": true,
	"c":    true,
	"cpp":  true,
	"go":   true,
	"rs":   true,
	"php":  true,
	"rb":   true,
}

// FetchedFile is a downloaded code file at the pushed commit.
type FetchedFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Size    int    `json:"size"`
	SHA     string `json:"sha"`
}

// ChangedFiles echoes the push event's change lists.
type ChangedFiles struct {
	Added    []string `json:"added"`
	Modified []string `json:"modified"`
	Removed  []string `json:"removed"`
}

// Summary aggregates the outcome of one resolution.
type Summary struct {
	TotalFilesChanged   int `json:"total_files_changed"`
	CodeFilesDownloaded int `json:"code_files_downloaded"`
	FilesRemoved        int `json:"files_removed"`
}

// Result is the webhook response body.
type Result struct {
	CommitID      string        `json:"commit_id"`
	CommitMessage string        `json:"commit_message"`
	Author        string        `json:"author"`
	Timestamp     string        `json:"timestamp"`
	ChangedFiles  ChangedFiles  `json:"changed_files"`
	FileContents  []FetchedFile `json:"file_contents"`
	Summary       Summary       `json:"summary"`
}

// Resolver downloads the code files touched by a push.
type Resolver struct {
	fetcher provider.Fetcher
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a Resolver. The timeout bounds each individual file fetch.
func New(fetcher provider.Fetcher, timeout time.Duration, log zerolog.Logger) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		timeout: timeout,
		log:     log,
	}
}

// Resolve fetches every recognized code file from the push's added and
// modified lists at the pushed commit and assembles the response. A failed
// or timed-out fetch skips that file; the batch always completes.
func (r *Resolver) Resolve(ctx context.Context, ev *event.PushEvent) *Result {
	result := &Result{
		CommitID:      ev.CommitID,
		CommitMessage: ev.CommitMessage,
		Author:        ev.AuthorName,
		Timestamp:     ev.Timestamp,
		ChangedFiles: ChangedFiles{
			Added:    ev.Added,
			Modified: ev.Modified,
			Removed:  ev.Removed,
		},
		FileContents: []FetchedFile{},
	}

	for _, path := range candidatePaths(ev) {
		file, err := r.fetchOne(ctx, path, ev.CommitID)
		if err != nil {
			metrics.FetchFailure()
			r.log.Warn().Err(err).Str("path", path).Str("ref", ev.CommitID).Msg("skipping file")
			continue
		}
		metrics.FileFetched()
		result.FileContents = append(result.FileContents, FetchedFile{
			Path:    file.Path,
			Content: file.Content,
			Size:    file.Size,
			SHA:     file.SHA,
		})
	}

	result.Summary = Summary{
		TotalFilesChanged:   len(ev.Added) + len(ev.Modified) + len(ev.Removed),
		CodeFilesDownloaded: len(result.FileContents),
		FilesRemoved:        len(ev.Removed),
	}

	return result
}

// fetchOne fetches a single file under the per-call timeout.
func (r *Resolver) fetchOne(ctx context.Context, path, ref string) (*provider.File, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.fetcher.FetchFile(ctx, path, ref)
}

// candidatePaths unions added and modified in first-seen order, dedupes by
// first occurrence, and keeps only recognized code files.
func candidatePaths(ev *event.PushEvent) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range [][]string{ev.Added, ev.Modified} {
		for _, path := range list {
			if seen[path] {
				continue
			}
			seen[path] = true
			if !isCodeFile(path) {
				continue
			}
			out = append(out, path)
		}
	}
	return out
}

// isCodeFile reports whether path has a recognized source extension.
// A path with no dot has no extension and is never a code file.
func isCodeFile(path string) bool {
	i := strings.LastIndex(path, ".")
	if i < 0 || i == len(path)-1 {
		return false
	}
	return codeExtensions[strings.ToLower(path[i+1:])]
}
