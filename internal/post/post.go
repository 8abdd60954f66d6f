// Package post defines the domain types that flow through the engagement
// pipeline: candidate posts under evaluation and the comments that already
// exist on them.
package post

import (
	"errors"
	"fmt"
	"strings"
)

// Post is a candidate discussion-platform item being evaluated for an
// automated reply. Posts are ephemeral: the scorer enriches them in place
// for the duration of a run, nothing here is persisted.
type Post struct {
	ID          string
	Title       string
	Body        string
	Score       int     // platform popularity score (upvotes)
	NumComments int
	AgeHours    float64
	Subreddit   string
	URL         string

	// Filled in by the relevance scorer
	RelevanceScore   int
	RelevanceReasons []string
}

// Comment is an existing response on a post. Read-only input to the
// duplicate detector and the sniper trigger scan.
type Comment struct {
	ID     string
	Body   string
	Author string
	Score  int
}

// ErrMissingID is returned for candidates without a platform identifier.
var ErrMissingID = errors.New("post has no id")

// Validate checks the fields every pipeline stage relies on.
// A post that fails validation is skipped, never fatal to a batch.
func (p *Post) Validate() error {
	if p.ID == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("post %s has no title", p.ID)
	}
	return nil
}

// SearchText returns the lowercased title+body used by keyword matching.
func (p *Post) SearchText() string {
	return strings.ToLower(p.Title + " " + p.Body)
}
