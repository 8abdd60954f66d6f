package scoring

import (
	"strings"

	"github.com/mbarlow/groundswell/internal/post"
)

// Category determines which reply strategy fits a post
type Category string

const (
	CategoryCompetitorComplaint   Category = "competitor_complaint"
	CategoryRecommendationRequest Category = "recommendation_request"
	CategoryTechnicalQuestion     Category = "technical_question"
	CategoryGeneralDiscussion     Category = "general_discussion"
)

// complaintWords mark a post as venting about a tool.
var complaintWords = []string{
	"hate", "terrible", "awful", "expensive", "broken",
	"doesn't work", "stopped working", "frustrated", "annoying",
}

var recommendationIntent = newRegexIntent([]string{
	`recommend`,
	`looking for`,
	`suggest(ion)?`,
	`what (do you|should i) use`,
	`best (tool|app|software)`,
	`alternative to`,
})

var technicalIntent = newRegexIntent([]string{
	`how (do|can|to)`,
	`is (it|there) (a way|possible)`,
	`help with`,
	`issue with`,
	`problem with`,
})

// Categorize classifies a post for reply-strategy selection.
// Precedence matters: a post that both complains about a competitor and
// asks a question is a complaint — the complaint check runs first.
func (s *Scorer) Categorize(p *post.Post) Category {
	text := p.SearchText()

	if countMatches(s.competitors, text) > 0 && containsAny(text, complaintWords) {
		return CategoryCompetitorComplaint
	}

	if recommendationIntent.Matches(text) {
		return CategoryRecommendationRequest
	}

	if technicalIntent.Matches(text) {
		return CategoryTechnicalQuestion
	}

	return CategoryGeneralDiscussion
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
