package scoring

import (
	"fmt"
	"sort"

	"github.com/mbarlow/groundswell/internal/config"
	"github.com/mbarlow/groundswell/internal/logging"
	"github.com/mbarlow/groundswell/internal/post"
)

// RepliedSet answers whether a post has already been acted on.
// The store provides the persisted implementation.
type RepliedSet interface {
	Contains(postID string) bool
}

// Skipped is a post that was filtered out, with the reason why.
type Skipped struct {
	Post   post.Post
	Reason string
}

// Buckets is the outcome of a filtering pass. ForGeneration holds the
// top candidates worth a generation call, Maybe the scored remainder,
// Skipped everything filtered out before or after scoring.
type Buckets struct {
	ForGeneration []post.Post
	Maybe         []post.Post
	Skipped       []Skipped
}

// Filter runs the multi-stage pipeline over a batch of posts:
// cheap rejections first (already replied, unpopular, stale), then the
// weighted relevance score, then a threshold cut, and finally a sort and
// split at the top-N cutoff. One bad candidate never aborts the batch.
func (s *Scorer) Filter(posts []post.Post, replied RepliedSet, t config.ThresholdConfig) Buckets {
	var out Buckets
	var scored []post.Post

	for _, p := range posts {
		if err := p.Validate(); err != nil {
			out.Skipped = append(out.Skipped, Skipped{Post: p, Reason: fmt.Sprintf("invalid: %v", err)})
			continue
		}

		if replied != nil && replied.Contains(p.ID) {
			out.Skipped = append(out.Skipped, Skipped{Post: p, Reason: "already_replied"})
			continue
		}

		if p.Score < t.MinPostScore {
			out.Skipped = append(out.Skipped, Skipped{
				Post:   p,
				Reason: fmt.Sprintf("low_score (%d < %d)", p.Score, t.MinPostScore),
			})
			continue
		}

		if p.AgeHours > t.MaxPostAgeHours {
			out.Skipped = append(out.Skipped, Skipped{
				Post:   p,
				Reason: fmt.Sprintf("too_old (%.0fh > %.0fh)", p.AgeHours, t.MaxPostAgeHours),
			})
			continue
		}

		score, reasons := s.Score(&p)
		p.RelevanceScore = score
		p.RelevanceReasons = reasons

		if score < t.RelevanceThreshold {
			out.Skipped = append(out.Skipped, Skipped{
				Post:   p,
				Reason: fmt.Sprintf("low_relevance (%d < %d)", score, t.RelevanceThreshold),
			})
			continue
		}

		scored = append(scored, p)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	cut := t.MaxForGeneration
	if cut > len(scored) {
		cut = len(scored)
	}
	out.ForGeneration = scored[:cut]
	out.Maybe = scored[cut:]

	logging.Debug("Filter pass complete",
		"in", len(posts),
		"for_generation", len(out.ForGeneration),
		"maybe", len(out.Maybe),
		"skipped", len(out.Skipped))

	return out
}
