package platform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/mbarlow/groundswell/internal/post"
)

// RSSSource pulls a subreddit's newest posts over its RSS feed. The
// feed carries no score or comment counts, so those fields are zero;
// it exists as a fallback when the JSON endpoints are throttled.
type RSSSource struct {
	baseURL string
	parser  *gofeed.Parser
	now     func() time.Time
}

// NewRSSSource builds an RSS source for the public feeds.
func NewRSSSource() *RSSSource {
	return &RSSSource{
		baseURL: "https://www.reddit.com",
		parser:  gofeed.NewParser(),
		now:     time.Now,
	}
}

// SetBaseURL points the source at a different host. Used by tests.
func (s *RSSSource) SetBaseURL(u string) { s.baseURL = u }

// SetClock injects a clock for tests.
func (s *RSSSource) SetClock(now func() time.Time) { s.now = now }

// NewPosts fetches the subreddit's feed and maps entries to posts.
func (s *RSSSource) NewPosts(ctx context.Context, subreddit string, limit int) ([]post.Post, error) {
	feed, err := s.parser.ParseURLWithContext(fmt.Sprintf("%s/r/%s/new/.rss", s.baseURL, subreddit), ctx)
	if err != nil {
		return nil, fmt.Errorf("rss r/%s: %w", subreddit, err)
	}

	now := s.now()
	posts := make([]post.Post, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if limit > 0 && len(posts) >= limit {
			break
		}

		age := 0.0
		if entry.PublishedParsed != nil {
			age = now.Sub(*entry.PublishedParsed).Hours()
		} else if entry.UpdatedParsed != nil {
			age = now.Sub(*entry.UpdatedParsed).Hours()
		}

		posts = append(posts, post.Post{
			ID:        entryID(entry),
			Title:     entry.Title,
			Body:      entry.Description,
			AgeHours:  age,
			Subreddit: subreddit,
			URL:       entry.Link,
		})
	}
	return posts, nil
}

// entryID extracts the post ID from an entry GUID like
// "t3_1abcdef"; falls back to the raw GUID or link.
func entryID(entry *gofeed.Item) string {
	id := entry.GUID
	if id == "" {
		return entry.Link
	}
	if rest, ok := strings.CutPrefix(id, "t3_"); ok {
		return rest
	}
	return id
}
