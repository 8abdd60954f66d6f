package dedup

import (
	"regexp"
	"strings"
)

// PointExtractor reduces free text to the short phrases that carry its
// substance: tools named, techniques described. Kept as an interface so
// the heuristics can be replaced without touching the detector.
type PointExtractor interface {
	ExtractPoints(text string) []string
}

// regexExtractor is the default pattern-based extractor.
type regexExtractor struct {
	productPatterns   []*regexp.Regexp
	techniquePatterns []*regexp.Regexp
}

// NewExtractor returns the default point extractor. knownTools seeds the
// direct-mention pattern; pass nil for the stock list.
func NewExtractor(knownTools []string) PointExtractor {
	if len(knownTools) == 0 {
		knownTools = []string{`otter\.ai`, "descript", "whisper", "notion", "obsidian"}
	}

	return &regexExtractor{
		productPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(` + strings.Join(knownTools, "|") + `)\b`),
			regexp.MustCompile(`(?i)\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s+(?:app|tool|software)\b`),
			regexp.MustCompile(`(?i)\buse\s+([a-z]+(?:\s+[a-z]+){0,2})\b`),
			regexp.MustCompile(`(?i)\btry\s+([a-z]+(?:\s+[a-z]+){0,2})\b`),
		},
		techniquePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:i|we)\s+(.*?)\s+(?:and|to|for)\b`),
			regexp.MustCompile(`(?:use|using|try)\s+(.*?)\s+(?:to|for|and)\b`),
		},
	}
}

// ExtractPoints pulls out product mentions and technique phrases.
func (e *regexExtractor) ExtractPoints(text string) []string {
	var points []string

	for _, re := range e.productPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if len(m) > 1 {
				points = append(points, m[1])
			}
		}
	}

	lower := strings.ToLower(text)
	for _, re := range e.techniquePatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			if len(m) > 1 && len(m[1]) > 5 {
				p := m[1]
				if r := []rune(p); len(r) > 50 {
					p = string(r[:50])
				}
				points = append(points, p)
			}
		}
	}

	var cleaned []string
	for _, p := range points {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return cleaned
}
