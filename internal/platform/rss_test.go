package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const feedBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>newest submissions</title>
<item>
	<guid>t3_abc123</guid>
	<title>Best transcription app?</title>
	<link>https://example.com/r/productivity/comments/abc123/best_transcription_app/</link>
	<description>Looking for recommendations</description>
	<pubDate>Sun, 30 Aug 2026 11:00:00 GMT</pubDate>
</item>
<item>
	<guid>t3_def456</guid>
	<title>Weekly accountability thread</title>
	<link>https://example.com/r/productivity/comments/def456/weekly/</link>
	<description>Post your goals</description>
	<pubDate>Sun, 30 Aug 2026 06:00:00 GMT</pubDate>
</item>
</channel>
</rss>`

func newTestRSSSource(t *testing.T, handler http.HandlerFunc) *RSSSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewRSSSource()
	s.SetBaseURL(srv.URL)
	s.SetClock(func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) })
	return s
}

func TestRSSNewPostsMapsFeed(t *testing.T) {
	var gotPath string
	s := newTestRSSSource(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feedBody))
	})

	posts, err := s.NewPosts(context.Background(), "productivity", 0)
	if err != nil {
		t.Fatalf("NewPosts: %v", err)
	}

	if gotPath != "/r/productivity/new/.rss" {
		t.Errorf("path = %q", gotPath)
	}
	if len(posts) != 2 {
		t.Fatalf("posts = %d, want 2", len(posts))
	}

	p := posts[0]
	if p.ID != "abc123" {
		t.Errorf("ID = %q, want t3_ prefix stripped", p.ID)
	}
	if p.Title != "Best transcription app?" || p.Subreddit != "productivity" {
		t.Errorf("mapped post = %+v", p)
	}
	if p.AgeHours < 0.99 || p.AgeHours > 1.01 {
		t.Errorf("AgeHours = %v, want ~1", p.AgeHours)
	}
	if posts[1].AgeHours < 5.99 || posts[1].AgeHours > 6.01 {
		t.Errorf("second AgeHours = %v, want ~6", posts[1].AgeHours)
	}
}

func TestRSSNewPostsHonorsLimit(t *testing.T) {
	s := newTestRSSSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedBody))
	})

	posts, err := s.NewPosts(context.Background(), "productivity", 1)
	if err != nil {
		t.Fatalf("NewPosts: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "abc123" {
		t.Fatalf("posts = %+v, want just the first entry", posts)
	}
}

func TestRSSNewPostsFeedError(t *testing.T) {
	s := newTestRSSSource(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusTooManyRequests)
	})

	if _, err := s.NewPosts(context.Background(), "productivity", 0); err == nil {
		t.Error("expected error on non-200 feed response")
	}
}
