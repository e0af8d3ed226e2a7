// Package research queries external corpora for candidate sources and
// aggregates them for a topic.
package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	types "github.com/yungbote/skilltree-backend/internal/domain"
)

// ResearchSource searches one external corpus. Returned sources are unsaved.
type ResearchSource interface {
	SourceType() types.SourceType
	// Search returns at most maxResults sources. Malformed records are
	// skipped; a failed request fails the whole call with a *SourceError.
	Search(ctx context.Context, query string, maxResults int) ([]*types.Source, error)
	// FetchDetails returns nil, nil when the url is not recognized or the
	// upstream has no such record.
	FetchDetails(ctx context.Context, url string) (*types.Source, error)
	// CanHandle does no I/O.
	CanHandle(url string) bool
}

// ErrInvalidSource marks a record that cannot be stored as a Source. The
// aggregator skips such records instead of failing the run.
var ErrInvalidSource = errors.New("invalid source")

type SourceError struct {
	SourceType types.SourceType
	Op         string
	Err        error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.SourceType, e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

func sourceErr(t types.SourceType, op string, err error) error {
	if err == nil {
		return nil
	}
	return &SourceError{SourceType: t, Op: op, Err: err}
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
