// Package scoring ranks candidate posts without touching the paid
// generation service. Everything here is pure keyword and pattern
// matching: cheap enough to run on every post of every search.
package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mbarlow/groundswell/internal/config"
	"github.com/mbarlow/groundswell/internal/post"
)

// IntentMatcher reports whether free text matches an intent. The scorer
// and categorizer only depend on this, so the heuristics can be swapped
// or tested on their own.
type IntentMatcher interface {
	Matches(text string) bool
}

// regexIntent matches any of a set of patterns.
type regexIntent struct {
	re *regexp.Regexp
}

func (m regexIntent) Matches(text string) bool { return m.re.MatchString(text) }

// newRegexIntent compiles patterns into a single alternation matcher.
func newRegexIntent(patterns []string) IntentMatcher {
	return regexIntent{re: regexp.MustCompile("(?i)" + strings.Join(patterns, "|"))}
}

// highValuePatterns strongly indicate a post worth replying to:
// someone shopping for an alternative or asking for recommendations.
var highValuePatterns = []string{
	`\balternative\s+to\b`,
	`\bbetter\s+than\b`,
	`\brecommend(ation)?s?\b`,
	`\blooking\s+for\b`,
	`\bwhat\s+do\s+you\s+use\b`,
	`\bany(one)?\s+(know|suggest|recommend)\b`,
	`\bhelp\s+(me\s+)?find\b`,
	`\bswitch(ing)?\s+from\b`,
	`\bfrustrat(ed|ing)\b`,
	`\bexpensive\b`,
	`\bfree\s+(alternative|option|tool)\b`,
}

// questionWords open a title that reads as a question even without "?".
var questionWords = []string{"how ", "what ", "which ", "any "}

// Weights holds the per-rule contributions. The values here are the
// reference tuning; callers can override before building a Scorer.
type Weights struct {
	PrimaryPer    int // per distinct primary keyword
	PrimaryCap    int
	PainPer       int // per distinct pain-point keyword
	PainCap       int
	Competitor    int // flat, any competitor mention
	HighValue     int // flat, intent pattern match
	Question      int
	EngageHigh    int // comments >= 10
	EngageMed     int // comments >= 5
	FreshVery     int // age < 6h
	Fresh         int // age < 24h
}

// DefaultWeights returns the reference rule weights.
func DefaultWeights() Weights {
	return Weights{
		PrimaryPer: 15, PrimaryCap: 30,
		PainPer: 20, PainCap: 40,
		Competitor: 25,
		HighValue:  20,
		Question:   10,
		EngageHigh: 10, EngageMed: 5,
		FreshVery: 15, Fresh: 10,
	}
}

// Scorer assigns relevance scores to candidate posts. Deterministic,
// no side effects beyond enriching the post in place via Filter.
type Scorer struct {
	primary     map[string]bool
	painPoints  map[string]bool
	competitors map[string]bool
	highValue   IntentMatcher
	weights     Weights
}

// NewScorer builds a Scorer from the configured keyword lists.
func NewScorer(cfg *config.Config) *Scorer {
	return &Scorer{
		primary:     lowerSet(cfg.Keywords.Primary),
		painPoints:  lowerSet(cfg.Keywords.PainPoints),
		competitors: lowerSet(cfg.Keywords.Competitors),
		highValue:   newRegexIntent(highValuePatterns),
		weights:     DefaultWeights(),
	}
}

// SetWeights overrides the rule weights.
func (s *Scorer) SetWeights(w Weights) { s.weights = w }

func lowerSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}

func countMatches(set map[string]bool, text string) int {
	n := 0
	for kw := range set {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

// Score computes a relevance score in [0,100] plus the list of rules
// that contributed, in rule order. Same input always gives the same
// score and the same reason list.
func (s *Scorer) Score(p *post.Post) (int, []string) {
	score := 0
	var reasons []string

	text := p.SearchText()
	w := s.weights

	// Primary keyword matches, capped
	if n := countMatches(s.primary, text); n > 0 {
		points := min(n*w.PrimaryPer, w.PrimaryCap)
		score += points
		reasons = append(reasons, fmt.Sprintf("primary_keywords: +%d", points))
	}

	// Pain point keywords, capped
	if n := countMatches(s.painPoints, text); n > 0 {
		points := min(n*w.PainPer, w.PainCap)
		score += points
		reasons = append(reasons, fmt.Sprintf("pain_point_keywords: +%d", points))
	}

	// Competitor mentions: flat bonus however many match
	if countMatches(s.competitors, text) > 0 {
		score += w.Competitor
		reasons = append(reasons, fmt.Sprintf("competitor_mention: +%d", w.Competitor))
	}

	// High-value intent patterns
	if s.highValue.Matches(text) {
		score += w.HighValue
		reasons = append(reasons, fmt.Sprintf("high_value_pattern: +%d", w.HighValue))
	}

	// Question indicators
	if isQuestion(p.Title, text) {
		score += w.Question
		reasons = append(reasons, fmt.Sprintf("question_format: +%d", w.Question))
	}

	// Engagement bonus: more comments means more eyes on our reply
	if p.NumComments >= 10 {
		score += w.EngageHigh
		reasons = append(reasons, fmt.Sprintf("high_engagement: +%d", w.EngageHigh))
	} else if p.NumComments >= 5 {
		score += w.EngageMed
		reasons = append(reasons, fmt.Sprintf("medium_engagement: +%d", w.EngageMed))
	}

	// Freshness bonus
	if p.AgeHours < 6 {
		score += w.FreshVery
		reasons = append(reasons, fmt.Sprintf("very_fresh: +%d", w.FreshVery))
	} else if p.AgeHours < 24 {
		score += w.Fresh
		reasons = append(reasons, fmt.Sprintf("fresh: +%d", w.Fresh))
	}

	if score > 100 {
		score = 100
	}

	return score, reasons
}

func isQuestion(title, text string) bool {
	if strings.Contains(title, "?") {
		return true
	}
	for _, w := range questionWords {
		if strings.HasPrefix(text, w) {
			return true
		}
	}
	return false
}
