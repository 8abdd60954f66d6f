// Package monitor follows posts after publication: it keeps a watch
// list, diffs each post's comments against the IDs seen last time, and
// classifies the new arrivals so responses go to criticism and
// questions before anything else.
package monitor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mbarlow/groundswell/internal/logging"
	"github.com/mbarlow/groundswell/internal/post"
	"github.com/mbarlow/groundswell/internal/store"
)

// Urgency levels for a comment needing a response.
const (
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"
	UrgencyLow    = "low"
)

var criticismWords = []string{
	"wrong", "bad idea", "doesn't work", "doesnt work", "disagree",
	"terrible", "waste", "misleading", "scam", "spam", "shill", "astroturf",
}

var praiseWords = []string{
	"thanks", "thank you", "great post", "helpful", "awesome",
	"love this", "saved me", "exactly what i needed",
}

var questionStarts = []string{"how ", "what ", "which ", "why ", "can ", "does ", "is there"}

// Analysis is the classification of one comment on a watched post.
type Analysis struct {
	Comment       post.Comment
	IsQuestion    bool
	IsCriticism   bool
	IsPraise      bool
	NeedsResponse bool
	Urgency       string
}

// Update is the outcome of checking one watched post.
type Update struct {
	URL         string
	NewComments []Analysis
}

// Monitor tracks published posts and classifies fresh comments.
type Monitor struct {
	store *store.Store
	now   func() time.Time
}

// NewMonitor builds a Monitor over the given store.
func NewMonitor(s *store.Store) *Monitor {
	return &Monitor{store: s, now: time.Now}
}

// SetClock injects a clock for tests.
func (m *Monitor) SetClock(now func() time.Time) { m.now = now }

// Watch adds a post URL to the watch list. Watching the same URL twice
// is a no-op.
func (m *Monitor) Watch(url string) error {
	if url == "" {
		return fmt.Errorf("watch: missing URL")
	}
	if err := m.store.WatchPost(url, m.now()); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	logging.Info("Watching post", "url", url)
	return nil
}

// Watched lists the current watch list.
func (m *Monitor) Watched() ([]store.WatchedPost, error) {
	return m.store.WatchedPosts()
}

// CheckPost diffs the given comments against the IDs stored for the
// URL, classifies the new ones, and records the full ID set so the next
// check starts clean. Comments without an ID are ignored; they cannot
// be diffed.
func (m *Monitor) CheckPost(w store.WatchedPost, comments []post.Comment) (Update, error) {
	known := make(map[string]bool, len(w.KnownCommentIDs))
	for _, id := range w.KnownCommentIDs {
		known[id] = true
	}

	ids := make([]string, 0, len(comments))
	var fresh []Analysis
	for _, c := range comments {
		if c.ID == "" {
			continue
		}
		ids = append(ids, c.ID)
		if !known[c.ID] {
			fresh = append(fresh, AnalyzeComment(c))
		}
	}

	if err := m.store.UpdateWatched(w.URL, ids, m.now()); err != nil {
		return Update{}, fmt.Errorf("check post: %w", err)
	}

	if len(fresh) > 0 {
		logging.Info("New comments on watched post", "url", w.URL, "count", len(fresh))
	}
	return Update{URL: w.URL, NewComments: Prioritize(fresh)}, nil
}

// AnalyzeComment classifies a single comment. A comment that asks
// something gets answered at medium urgency even when it also
// complains; pure criticism is high urgency; praise is nice to see but
// needs no reply.
func AnalyzeComment(c post.Comment) Analysis {
	body := strings.ToLower(strings.TrimSpace(c.Body))

	a := Analysis{Comment: c}
	a.IsCriticism = containsAny(body, criticismWords)
	a.IsPraise = containsAny(body, praiseWords)
	a.IsQuestion = strings.Contains(body, "?") || hasPrefixAny(body, questionStarts)

	switch {
	case a.IsQuestion:
		a.NeedsResponse = true
		a.Urgency = UrgencyMedium
	case a.IsCriticism:
		a.NeedsResponse = true
		a.Urgency = UrgencyHigh
	default:
		a.Urgency = UrgencyLow
	}
	return a
}

// Prioritize orders analyses for response: criticism first, then
// questions, then the rest. Order within a band is preserved.
func Prioritize(analyses []Analysis) []Analysis {
	out := make([]Analysis, len(analyses))
	copy(out, analyses)
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i]) < rank(out[j])
	})
	return out
}

func rank(a Analysis) int {
	switch {
	case a.IsCriticism:
		return 0
	case a.IsQuestion:
		return 1
	default:
		return 2
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func hasPrefixAny(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
