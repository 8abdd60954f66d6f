package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const searchBody = `{
	"data": {
		"children": [
			{"data": {
				"id": "abc123",
				"title": "Best transcription app?",
				"selftext": "Looking for recommendations",
				"score": 42,
				"num_comments": 7,
				"created_utc": 1788080400,
				"subreddit": "productivity",
				"permalink": "/r/productivity/comments/abc123/best_transcription_app/"
			}},
			{"data": {"id": "", "title": "malformed, no id"}}
		]
	}
}`

const commentsBody = `[
	{"data": {"children": [{"data": {"id": "abc123", "title": "the post itself"}}]}},
	{"data": {"children": [
		{"data": {"id": "c1", "body": "try otter", "author": "user1", "score": 3}},
		{"data": {"id": "c2", "body": "", "author": "deleted", "score": 0}},
		{"data": {"id": "c3", "body": "what app is this?", "author": "user2", "score": 1}}
	]}}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient()
	c.SetBaseURL(srv.URL)
	// 2026-08-30 13:00 UTC, one hour after the fixture's created_utc.
	c.SetClock(func() time.Time { return time.Unix(1788080400+3600, 0) })
	return c
}

func TestSearchMapsListing(t *testing.T) {
	var gotPath, gotQuery, gotUA string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(searchBody))
	})

	posts, err := c.Search(context.Background(), "productivity", "transcription", 25)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotPath != "/r/productivity/search.json" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "transcription" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotUA == "" {
		t.Error("request must carry a user agent")
	}

	if len(posts) != 1 {
		t.Fatalf("posts = %d, want 1 (malformed entry skipped)", len(posts))
	}
	p := posts[0]
	if p.ID != "abc123" || p.Score != 42 || p.NumComments != 7 || p.Subreddit != "productivity" {
		t.Errorf("mapped post = %+v", p)
	}
	if p.AgeHours < 0.99 || p.AgeHours > 1.01 {
		t.Errorf("AgeHours = %v, want ~1", p.AgeHours)
	}
}

func TestCommentsSkipsEmptyBodies(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(commentsBody))
	})

	comments, err := c.Comments(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("comments = %d, want 2", len(comments))
	}
	if comments[0].ID != "c1" || comments[1].ID != "c3" {
		t.Errorf("comment IDs = %s, %s", comments[0].ID, comments[1].ID)
	}
}

func TestGetJSONStatusError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	if _, err := c.Search(context.Background(), "productivity", "q", 10); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestSearchContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchBody))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Search(ctx, "productivity", "q", 10); err == nil {
		t.Error("expected error on cancelled context")
	}
}

func TestDryRunPosterFabricatesIDs(t *testing.T) {
	p := NewDryRunPoster()

	id1, err := p.PostComment(context.Background(), "abc123", "hello")
	if err != nil {
		t.Fatalf("PostComment: %v", err)
	}
	id2, err := p.PostComment(context.Background(), "abc123", "hello again")
	if err != nil {
		t.Fatalf("PostComment: %v", err)
	}
	if id1 == "" || id1 == id2 {
		t.Errorf("ids = %q, %q, want distinct non-empty", id1, id2)
	}
}
