package platform

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/mbarlow/groundswell/internal/logging"
)

// Poster places a comment on a post and returns the new comment's ID.
// The read-only client never implements this; callers inject whatever
// dispatch mechanism they actually have.
type Poster interface {
	PostComment(ctx context.Context, postID, text string) (commentID string, err error)
}

// DryRunPoster logs what would be posted and fabricates a comment ID.
// The default Poster: nothing leaves the machine.
type DryRunPoster struct {
	seq atomic.Int64
}

// NewDryRunPoster builds a DryRunPoster.
func NewDryRunPoster() *DryRunPoster {
	return &DryRunPoster{}
}

// PostComment logs the intended comment without sending anything.
func (p *DryRunPoster) PostComment(_ context.Context, postID, text string) (string, error) {
	id := fmt.Sprintf("dryrun_%d", p.seq.Add(1))

	preview := text
	if r := []rune(preview); len(r) > 120 {
		preview = string(r[:120]) + "..."
	}
	logging.Info("DRY RUN: would post comment", "post_id", postID, "comment_id", id, "text", preview)
	return id, nil
}
