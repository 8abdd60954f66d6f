// Package intel mines scored posts for market signal: how people talk
// about the pain points and competitors we track, aggregated into a
// sentiment breakdown with a few actionable lines.
package intel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mbarlow/groundswell/internal/config"
	"github.com/mbarlow/groundswell/internal/post"
	"github.com/mbarlow/groundswell/internal/store"
)

// Sentiment labels assigned to a post.
const (
	SentimentFrustrated = "frustrated"
	SentimentSeeking    = "seeking"
	SentimentPositive   = "positive"
	SentimentNeutral    = "neutral"
)

var frustratedWords = []string{
	"frustrated", "annoying", "hate", "terrible", "awful", "useless",
	"gave up", "waste of money", "cancelled", "canceling",
}

var seekingWords = []string{
	"looking for", "recommend", "suggestions", "alternatives",
	"anyone know", "what do you use", "help me find",
}

var positiveWords = []string{
	"love", "amazing", "perfect", "works great", "game changer", "impressed",
}

// Insights is the aggregate view over a batch of analyses.
type Insights struct {
	Total       int
	BySentiment map[string]int
	TopMentions []Mention
	Summary     []string
}

// Mention counts how often a tracked competitor or pain point appeared.
type Mention struct {
	Term  string
	Count int
}

// Analyzer classifies posts against the configured keyword lists.
type Analyzer struct {
	store       *store.Store
	competitors []string
	painPoints  []string
	now         func() time.Time
}

// NewAnalyzer builds an Analyzer from the keyword config.
func NewAnalyzer(s *store.Store, kw config.KeywordConfig) *Analyzer {
	return &Analyzer{
		store:       s,
		competitors: lowerAll(kw.Competitors),
		painPoints:  lowerAll(kw.PainPoints),
		now:         time.Now,
	}
}

// SetClock injects a clock for tests.
func (a *Analyzer) SetClock(now func() time.Time) { a.now = now }

// AnalyzePost classifies one post's sentiment and persists the
// analysis. Frustration outranks seeking outranks positive; a post
// matching nothing is neutral.
func (a *Analyzer) AnalyzePost(p *post.Post) (store.Analysis, error) {
	if err := p.Validate(); err != nil {
		return store.Analysis{}, fmt.Errorf("analyze post: %w", err)
	}

	text := p.SearchText()
	sentiment := SentimentNeutral
	switch {
	case containsAny(text, frustratedWords):
		sentiment = SentimentFrustrated
	case containsAny(text, seekingWords):
		sentiment = SentimentSeeking
	case containsAny(text, positiveWords):
		sentiment = SentimentPositive
	}

	analysis := store.Analysis{
		PostID:    p.ID,
		Title:     p.Title,
		Sentiment: sentiment,
		URL:       p.URL,
		Excerpt:   excerpt(p.Body, 200),
		CreatedAt: a.now(),
	}
	if err := a.store.SaveAnalysis(analysis); err != nil {
		return store.Analysis{}, fmt.Errorf("analyze post: %w", err)
	}
	return analysis, nil
}

// AnalyzeBatch runs AnalyzePost over a batch, skipping invalid posts.
func (a *Analyzer) AnalyzeBatch(posts []post.Post) ([]store.Analysis, error) {
	out := make([]store.Analysis, 0, len(posts))
	for i := range posts {
		analysis, err := a.AnalyzePost(&posts[i])
		if err != nil {
			continue
		}
		out = append(out, analysis)
	}
	return out, nil
}

// AggregateInsights summarizes a batch of posts: sentiment counts, the
// most-mentioned tracked terms, and a few plain-language takeaways.
func (a *Analyzer) AggregateInsights(posts []post.Post) Insights {
	ins := Insights{
		Total:       len(posts),
		BySentiment: map[string]int{},
	}

	mentions := map[string]int{}
	for i := range posts {
		text := posts[i].SearchText()

		sentiment := SentimentNeutral
		switch {
		case containsAny(text, frustratedWords):
			sentiment = SentimentFrustrated
		case containsAny(text, seekingWords):
			sentiment = SentimentSeeking
		case containsAny(text, positiveWords):
			sentiment = SentimentPositive
		}
		ins.BySentiment[sentiment]++

		for _, term := range a.competitors {
			if strings.Contains(text, term) {
				mentions[term]++
			}
		}
		for _, term := range a.painPoints {
			if strings.Contains(text, term) {
				mentions[term]++
			}
		}
	}

	for term, count := range mentions {
		ins.TopMentions = append(ins.TopMentions, Mention{Term: term, Count: count})
	}
	sort.Slice(ins.TopMentions, func(i, j int) bool {
		if ins.TopMentions[i].Count != ins.TopMentions[j].Count {
			return ins.TopMentions[i].Count > ins.TopMentions[j].Count
		}
		return ins.TopMentions[i].Term < ins.TopMentions[j].Term
	})
	if len(ins.TopMentions) > 5 {
		ins.TopMentions = ins.TopMentions[:5]
	}

	ins.Summary = summarize(ins)
	return ins
}

// Recent returns the newest persisted analyses.
func (a *Analyzer) Recent(limit int) ([]store.Analysis, error) {
	return a.store.Analyses(limit)
}

func summarize(ins Insights) []string {
	var lines []string
	if ins.Total == 0 {
		return []string{"No posts to analyze"}
	}

	if n := ins.BySentiment[SentimentFrustrated]; n > 0 {
		lines = append(lines, fmt.Sprintf("%d of %d posts express frustration with current tools", n, ins.Total))
	}
	if n := ins.BySentiment[SentimentSeeking]; n > 0 {
		lines = append(lines, fmt.Sprintf("%d of %d posts are actively seeking recommendations", n, ins.Total))
	}
	for _, m := range ins.TopMentions {
		lines = append(lines, fmt.Sprintf("%q mentioned in %d posts", m.Term, m.Count))
		break
	}
	if len(lines) == 0 {
		lines = append(lines, "No strong sentiment signal in this batch")
	}
	return lines
}

func excerpt(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
