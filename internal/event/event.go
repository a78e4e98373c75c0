package event

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotPush indicates the payload carries no commits and is therefore not
// a push event we can process.
var ErrNotPush = errors.New("not a push event")

// ErrMalformedPayload indicates the payload could not be parsed or is
// missing required fields.
var ErrMalformedPayload = errors.New("malformed payload")

// PushEvent is a normalized push notification: the pushed commit plus the
// file changes aggregated across every commit in the push. Immutable once
// parsed.
type PushEvent struct {
	// CommitID is the SHA the branch points at after the push.
	CommitID string

	// Head commit metadata.
	CommitMessage string
	AuthorName    string
	Timestamp     string // ISO-8601, as received

	// Changed file paths aggregated across commits. Each list is
	// deduplicated, preserving first-seen order.
	Added    []string
	Modified []string
	Removed  []string
}

// pushPayload mirrors the GitHub push webhook payload fields we need.
type pushPayload struct {
	After   string `json:"after"`
	Commits []struct {
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
		Author    struct {
			Name string `json:"name"`
		} `json:"author"`
		Added    []string `json:"added"`
		Modified []string `json:"modified"`
		Removed  []string `json:"removed"`
	} `json:"commits"`
}

// ParsePush parses a raw push webhook payload into a PushEvent.
// Returns ErrNotPush when the payload carries no commits, and
// ErrMalformedPayload when the body is not valid JSON or lacks the pushed
// commit id.
func ParsePush(payload []byte) (*PushEvent, error) {
	var p pushPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	if len(p.Commits) == 0 {
		return nil, ErrNotPush
	}
	if p.After == "" {
		return nil, fmt.Errorf("%w: missing after commit id", ErrMalformedPayload)
	}

	head := p.Commits[len(p.Commits)-1]
	ev := &PushEvent{
		CommitID:      p.After,
		CommitMessage: head.Message,
		AuthorName:    head.Author.Name,
		Timestamp:     head.Timestamp,
		Added:         []string{},
		Modified:      []string{},
		Removed:       []string{},
	}

	seenAdded := make(map[string]bool)
	seenModified := make(map[string]bool)
	seenRemoved := make(map[string]bool)
	for _, c := range p.Commits {
		ev.Added = appendUnique(ev.Added, seenAdded, c.Added)
		ev.Modified = appendUnique(ev.Modified, seenModified, c.Modified)
		ev.Removed = appendUnique(ev.Removed, seenRemoved, c.Removed)
	}

	return ev, nil
}

// appendUnique appends paths to dst, skipping ones already seen.
func appendUnique(dst []string, seen map[string]bool, paths []string) []string {
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		dst = append(dst, p)
	}
	return dst
}
