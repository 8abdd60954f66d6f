// Package dedup decides whether a proposed reply would add anything to a
// thread. Two cheap signals: whole-text similarity against each existing
// comment, and overlap between the key points each text makes. No model
// calls, no I/O.
package dedup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mbarlow/groundswell/internal/post"
)

// overlapThreshold is the fraction of our key points that must already be
// covered by one comment before point overlap alone marks a duplicate.
const overlapThreshold = 0.7

// Verdict is the outcome of a duplicate check.
type Verdict struct {
	IsDuplicate     bool
	Reason          string
	SimilarTo       string // excerpt of the comment we collided with
	SimilarityScore float64
	CommonPoints    []string
	Suggestions     []string
}

// Detector checks proposed replies against a thread's existing comments.
type Detector struct {
	threshold float64
	extractor PointExtractor
}

// NewDetector builds a Detector. Text pairs scoring above threshold on
// the similarity ratio are duplicates; 0.6 is the stock setting.
func NewDetector(threshold float64, extractor PointExtractor) *Detector {
	if threshold <= 0 {
		threshold = 0.6
	}
	if extractor == nil {
		extractor = NewExtractor(nil)
	}
	return &Detector{threshold: threshold, extractor: extractor}
}

// Check compares the proposed reply against each existing comment in
// input order; the first comment to trip either signal decides the
// verdict. Text similarity is checked before point overlap.
func (d *Detector) Check(proposed string, existing []post.Comment) Verdict {
	proposedPoints := d.extractor.ExtractPoints(proposed)

	for _, comment := range existing {
		similarity := Similarity(proposed, comment.Body)

		if similarity > d.threshold {
			return Verdict{
				IsDuplicate:     true,
				Reason:          fmt.Sprintf("Too similar to existing comment (%.0f%% match)", similarity*100),
				SimilarTo:       excerpt(comment.Body),
				SimilarityScore: similarity,
				Suggestions: []string{
					"Add a different perspective",
					"Mention a different approach",
					"Focus on a different aspect",
				},
			}
		}

		common := intersect(proposedPoints, d.extractor.ExtractPoints(comment.Body))
		if len(common) > 0 && len(proposedPoints) > 0 {
			overlap := float64(len(common)) / float64(len(proposedPoints))

			if overlap > overlapThreshold {
				return Verdict{
					IsDuplicate:     true,
					Reason:          fmt.Sprintf("%d key points already mentioned", len(common)),
					SimilarTo:       excerpt(comment.Body),
					SimilarityScore: overlap,
					CommonPoints:    common,
					Suggestions: []string{
						"Mention different tools/approaches",
						"Add a unique angle or perspective",
						"Focus on implementation details",
					},
				}
			}
		}
	}

	return Verdict{
		IsDuplicate:     false,
		Reason:          "Reply adds unique value",
		SimilarityScore: 0.0,
	}
}

// MentionedPoints returns the sorted union of key points across a
// thread — "what's already been said".
func (d *Detector) MentionedPoints(comments []post.Comment) []string {
	seen := make(map[string]bool)
	for _, c := range comments {
		for _, p := range d.extractor.ExtractPoints(c.Body) {
			seen[p] = true
		}
	}

	points := make([]string, 0, len(seen))
	for p := range seen {
		points = append(points, p)
	}
	sort.Strings(points)
	return points
}

// SuggestAngles reports which marketing aspects nobody in the thread has
// touched yet. aspects maps an aspect name to its keyword set. If every
// aspect is covered, three generic suggestions come back instead.
func (d *Detector) SuggestAngles(comments []post.Comment, aspects map[string][]string) []string {
	var joined strings.Builder
	for _, c := range comments {
		joined.WriteString(strings.ToLower(c.Body))
		joined.WriteByte(' ')
	}
	threadText := joined.String()

	names := make([]string, 0, len(aspects))
	for name := range aspects {
		names = append(names, name)
	}
	sort.Strings(names)

	var suggestions []string
	for _, name := range names {
		covered := false
		for _, kw := range aspects[name] {
			if strings.Contains(threadText, kw) {
				covered = true
				break
			}
		}
		if !covered {
			suggestions = append(suggestions, fmt.Sprintf("Focus on %s (not mentioned yet)", name))
		}
	}

	if len(suggestions) == 0 {
		suggestions = []string{
			"Add personal experience/story",
			"Provide specific numbers/benchmarks",
			"Share implementation tips",
		}
	}

	return suggestions
}

func excerpt(text string) string {
	r := []rune(text)
	if len(r) > 200 {
		return string(r[:200])
	}
	return text
}

func intersect(a, b []string) []string {
	inB := make(map[string]bool, len(b))
	for _, s := range b {
		inB[s] = true
	}

	seen := make(map[string]bool)
	var common []string
	for _, s := range a {
		if inB[s] && !seen[s] {
			seen[s] = true
			common = append(common, s)
		}
	}
	sort.Strings(common)
	return common
}
