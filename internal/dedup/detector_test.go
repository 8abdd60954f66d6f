package dedup

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mbarlow/groundswell/internal/config"
	"github.com/mbarlow/groundswell/internal/post"
)

func TestSimilarityIdentical(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "I use Otter.ai for transcription", "I use Otter.ai for transcription", 1.0},
		{"case and space insensitive", "  Hello World ", "hello world", 1.0},
		{"both empty", "", "", 1.0},
		{"disjoint", "aaaa", "bbbb", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilaritySymmetricAndBounded(t *testing.T) {
	a := "Try Descript, it has good accuracy"
	b := "I recommend using Otter.ai, it works great"

	ab := Similarity(a, b)
	ba := Similarity(b, a)

	if ab < 0 || ab > 1 {
		t.Errorf("similarity %v out of [0,1]", ab)
	}
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("similarity not symmetric: %v vs %v", ab, ba)
	}
}

func TestCheckIdenticalTextIsDuplicate(t *testing.T) {
	d := NewDetector(0.6, nil)

	body := "I recommend using Otter.ai, it works great for transcription!"
	verdict := d.Check(body, []post.Comment{{ID: "c1", Body: body}})

	if !verdict.IsDuplicate {
		t.Fatal("identical text not flagged as duplicate")
	}
	if verdict.SimilarityScore != 1.0 {
		t.Errorf("similarity = %v, want 1.0", verdict.SimilarityScore)
	}
	if verdict.SimilarTo == "" {
		t.Error("expected an excerpt of the similar comment")
	}
	if len(verdict.Suggestions) == 0 {
		t.Error("duplicate verdict should carry suggestions")
	}
}

func TestCheckDisjointTextsNotDuplicate(t *testing.T) {
	d := NewDetector(0.6, nil)

	existing := []post.Comment{
		{ID: "c1", Body: "zzz qqq xxx vvv kkk"},
	}

	verdict := d.Check("completely unrelated response about gardening", existing)

	if verdict.IsDuplicate {
		t.Fatalf("disjoint texts flagged duplicate: %+v", verdict)
	}
	if verdict.Reason != "Reply adds unique value" {
		t.Errorf("reason = %q", verdict.Reason)
	}
	if verdict.SimilarityScore != 0.0 {
		t.Errorf("similarity = %v, want 0", verdict.SimilarityScore)
	}
}

func TestCheckKeyPointOverlap(t *testing.T) {
	d := NewDetector(0.6, nil)

	// Same single key point ("otter.ai" product mention) but phrased
	// differently enough to stay under the text-similarity threshold.
	proposed := "otter.ai quietly handled every recording I threw at it last semester, zero babysitting required."
	existing := []post.Comment{
		{ID: "c1", Body: "been through descript, whisper, plus some sketchy freeware, but otter.ai was the single one that stuck with me long term"},
	}

	verdict := d.Check(proposed, existing)

	if !verdict.IsDuplicate {
		t.Fatalf("shared key point not flagged: %+v", verdict)
	}
	if len(verdict.CommonPoints) == 0 {
		t.Error("common points missing from verdict")
	}
	if verdict.SimilarityScore <= overlapThreshold {
		t.Errorf("overlap ratio = %v, should exceed %v", verdict.SimilarityScore, overlapThreshold)
	}
}

func TestCheckFirstHitWins(t *testing.T) {
	d := NewDetector(0.6, nil)

	body := "use whisper locally, it is fast and free for everyone"
	existing := []post.Comment{
		{ID: "first", Body: body},
		{ID: "second", Body: body},
	}

	verdict := d.Check(body, existing)

	if !verdict.IsDuplicate {
		t.Fatal("expected duplicate")
	}
	// The excerpt comes from the first comment scanned.
	if !strings.HasPrefix(body, verdict.SimilarTo) && verdict.SimilarTo != body {
		t.Errorf("excerpt %q does not come from first comment", verdict.SimilarTo)
	}
}

func TestMentionedPoints(t *testing.T) {
	d := NewDetector(0.6, nil)

	comments := []post.Comment{
		{Body: "I use Otter.ai for transcription. Works great but expensive."},
		{Body: "Try Descript, it has good accuracy and is free for basic use."},
	}

	points := d.MentionedPoints(comments)

	if len(points) == 0 {
		t.Fatal("no points extracted from thread")
	}
	for i := 1; i < len(points); i++ {
		if points[i-1] > points[i] {
			t.Fatal("points not sorted")
		}
	}
}

func TestSuggestAngles(t *testing.T) {
	d := NewDetector(0.6, nil)
	aspects := config.DefaultConfig().Aspects

	t.Run("uncovered aspects reported", func(t *testing.T) {
		comments := []post.Comment{
			{Body: "It is really fast and the price is fair."}, // covers speed + cost
		}

		got := d.SuggestAngles(comments, aspects)
		if len(got) == 0 {
			t.Fatal("expected uncovered aspects")
		}
		for _, s := range got {
			if strings.Contains(s, "speed/performance") || strings.Contains(s, "cost/pricing") {
				t.Errorf("covered aspect suggested: %q", s)
			}
		}
	})

	t.Run("generic fallback when all covered", func(t *testing.T) {
		comments := []post.Comment{
			{Body: "fast cheap privacy easy offline custom support"},
		}

		got := d.SuggestAngles(comments, aspects)
		if len(got) != 3 {
			t.Fatalf("fallback = %v, want 3 generic suggestions", got)
		}
	})
}

func TestExcerptRuneBoundary(t *testing.T) {
	long := strings.Repeat("Ähnlichkeitsprüfung ", 20) // multibyte, well past the cutoff

	got := excerpt(long)
	if !utf8.ValidString(got) {
		t.Fatalf("excerpt split a rune: %q", got[len(got)-4:])
	}
	if n := utf8.RuneCountInString(got); n != 200 {
		t.Errorf("excerpt length = %d runes, want 200", n)
	}

	if short := excerpt("kurz"); short != "kurz" {
		t.Errorf("excerpt(short) = %q, want unchanged", short)
	}
}
