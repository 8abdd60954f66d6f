package scoring

import (
	"sort"
	"strings"

	"github.com/mbarlow/groundswell/internal/post"
)

// KarmaOpportunity is a post suited for credibility building:
// a fresh, lightly-answered question with no product angle at all.
type KarmaOpportunity struct {
	Post  post.Post
	Score int
}

var karmaQuestionWords = []string{"how", "what", "why", "can", "is"}

// KarmaOpportunities finds posts good for building account credibility.
// Product-related posts are excluded on purpose — those belong to the
// engagement pipeline, answering them here would burn the opportunity.
func (s *Scorer) KarmaOpportunities(posts []post.Post, replied RepliedSet) []KarmaOpportunity {
	var opportunities []KarmaOpportunity

	for _, p := range posts {
		if replied != nil && replied.Contains(p.ID) {
			continue
		}

		text := p.SearchText()
		if countMatches(s.primary, text) > 0 {
			continue
		}

		isQuestion := strings.Contains(p.Title, "?") || hasPrefixAny(text, karmaQuestionWords)
		fewComments := p.NumComments < 5
		isFresh := p.AgeHours < 24

		if isQuestion && fewComments && isFresh {
			opportunities = append(opportunities, KarmaOpportunity{
				Post:  p,
				Score: karmaScore(&p),
			})
		}
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].Score > opportunities[j].Score
	})

	if len(opportunities) > 10 {
		opportunities = opportunities[:10]
	}
	return opportunities
}

// karmaScore favors fresh posts where a helpful answer will stand out.
func karmaScore(p *post.Post) int {
	score := 50

	// Fewer comments = more opportunity
	score += max(0, 20-p.NumComments*4)

	// Engagement potential
	score += min(p.Score*2, 20)

	// Freshness
	score += max(0, 30-int(p.AgeHours))

	return score
}

func hasPrefixAny(text string, words []string) bool {
	for _, w := range words {
		if strings.HasPrefix(text, w) {
			return true
		}
	}
	return false
}
