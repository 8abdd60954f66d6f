package scoring

import (
	"reflect"
	"testing"

	"github.com/mbarlow/groundswell/internal/config"
	"github.com/mbarlow/groundswell/internal/post"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Keywords = config.KeywordConfig{
		Primary:     []string{"transcription", "speech to text"},
		PainPoints:  []string{"expensive", "too slow"},
		Competitors: []string{"otter", "descript"},
	}
	return cfg
}

func samplePost() post.Post {
	return post.Post{
		ID:          "p1",
		Title:       "Looking for a free transcription alternative to Otter.ai",
		Body:        "Otter is getting too expensive for me. Any recommendations?",
		Score:       15,
		NumComments: 8,
		AgeHours:    12,
		Subreddit:   "productivity",
	}
}

func TestScoreReferenceScenario(t *testing.T) {
	s := NewScorer(testConfig())
	p := samplePost()

	score, reasons := s.Score(&p)

	// primary +15, pain +20, competitor +25, high-value +20,
	// engagement (5-9) +5, fresh (<24h) +10 = 95; no "?" in title.
	if score != 95 {
		t.Errorf("Score() = %d, want 95 (reasons: %v)", score, reasons)
	}
	if len(reasons) != 6 {
		t.Errorf("got %d reasons, want 6: %v", len(reasons), reasons)
	}
}

func TestScoreDeterministic(t *testing.T) {
	s := NewScorer(testConfig())
	p := samplePost()

	score1, reasons1 := s.Score(&p)
	score2, reasons2 := s.Score(&p)

	if score1 != score2 {
		t.Errorf("scores differ across calls: %d vs %d", score1, score2)
	}
	if !reflect.DeepEqual(reasons1, reasons2) {
		t.Errorf("reason lists differ across calls: %v vs %v", reasons1, reasons2)
	}
}

func TestScoreCapsAndClamp(t *testing.T) {
	cfg := testConfig()
	cfg.Keywords.Primary = []string{"alpha", "bravo", "charlie", "delta"}
	cfg.Keywords.PainPoints = []string{"echo", "foxtrot", "golf"}
	s := NewScorer(cfg)

	p := post.Post{
		ID:          "p2",
		Title:       "Which alternative to otter? alpha bravo charlie delta",
		Body:        "echo foxtrot golf — frustrated and expensive",
		Score:       50,
		NumComments: 20,
		AgeHours:    1,
	}

	score, reasons := s.Score(&p)

	// primary capped at 30 (4 matches), pain capped at 40 (3 matches),
	// competitor 25, high-value 20, question 10, engagement 10,
	// freshness 15 = 150 raw, clamped to 100.
	if score != 100 {
		t.Errorf("Score() = %d, want 100 (reasons: %v)", score, reasons)
	}

	for _, r := range reasons {
		switch r {
		case "primary_keywords: +60", "pain_point_keywords: +60":
			t.Errorf("per-rule cap exceeded: %s", r)
		}
	}
}

func TestScoreBounds(t *testing.T) {
	s := NewScorer(testConfig())

	tests := []struct {
		name string
		p    post.Post
	}{
		{"empty", post.Post{ID: "x", Title: "t"}},
		{"no matches", post.Post{ID: "y", Title: "gardening tips", Body: "roses", AgeHours: 100}},
		{"everything", samplePost()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := s.Score(&tt.p)
			if score < 0 || score > 100 {
				t.Errorf("score %d out of [0,100]", score)
			}
		})
	}
}

func TestCategorizePrecedence(t *testing.T) {
	s := NewScorer(testConfig())

	tests := []struct {
		name  string
		title string
		body  string
		want  Category
	}{
		{
			// Matches both complaint and question patterns; complaint wins.
			"complaint beats question",
			"How do I deal with otter?",
			"I hate it, it's terrible and keeps crashing",
			CategoryCompetitorComplaint,
		},
		{
			"recommendation request",
			"Best tool for meeting notes?",
			"Looking for suggestions",
			CategoryRecommendationRequest,
		},
		{
			"technical question",
			"Setup help",
			"How do I configure the microphone input?",
			CategoryTechnicalQuestion,
		},
		{
			"general discussion",
			"Thoughts on remote work",
			"Just musing about offices",
			CategoryGeneralDiscussion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := post.Post{ID: "c", Title: tt.title, Body: tt.body}
			if got := s.Categorize(&p); got != tt.want {
				t.Errorf("Categorize() = %q, want %q", got, tt.want)
			}
		})
	}
}
