// Package platform is the read-only discussion-platform client. It
// speaks the public JSON listing endpoints with a conservative rate
// limit and an honest user agent, and can also pull subreddit listings
// over RSS. Nothing in this package authenticates or writes.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/mbarlow/groundswell/internal/logging"
	"github.com/mbarlow/groundswell/internal/post"
)

const defaultUserAgent = "groundswell/0.1 (research client)"

// Client fetches posts and comments from the public JSON endpoints.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	now       func() time.Time
}

// NewClient builds a Client against the public API.
func NewClient() *Client {
	return &Client{
		baseURL:   "https://www.reddit.com",
		userAgent: defaultUserAgent,
		client:    &http.Client{Timeout: 30 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1), // ~30 RPM, well under the public cap
		now:       time.Now,
	}
}

// SetBaseURL points the client at a different host. Used by tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// SetClock injects a clock for tests.
func (c *Client) SetClock(now func() time.Time) { c.now = now }

// listing mirrors the JSON envelope the public endpoints return.
type listing struct {
	Data struct {
		Children []struct {
			Data listingPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type listingPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	Body        string  `json:"body"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Subreddit   string  `json:"subreddit"`
	Permalink   string  `json:"permalink"`
}

// Search runs a subreddit-restricted search, newest first.
func (c *Client) Search(ctx context.Context, subreddit, query string, limit int) ([]post.Post, error) {
	if limit <= 0 {
		limit = 25
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("restrict_sr", "1")
	q.Set("sort", "new")
	q.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/r/%s/search.json?%s", c.baseURL, url.PathEscape(subreddit), q.Encode())
	var l listing
	if err := c.getJSON(ctx, endpoint, &l); err != nil {
		return nil, fmt.Errorf("search r/%s: %w", subreddit, err)
	}

	return c.toPosts(l), nil
}

// NewPosts fetches the newest posts in a subreddit.
func (c *Client) NewPosts(ctx context.Context, subreddit string, limit int) ([]post.Post, error) {
	if limit <= 0 {
		limit = 25
	}

	endpoint := fmt.Sprintf("%s/r/%s/new.json?limit=%d", c.baseURL, url.PathEscape(subreddit), limit)
	var l listing
	if err := c.getJSON(ctx, endpoint, &l); err != nil {
		return nil, fmt.Errorf("new posts r/%s: %w", subreddit, err)
	}

	return c.toPosts(l), nil
}

// Comments fetches the comment tree for a post, flattened top-level
// only. The endpoint returns a two-element array: the post listing,
// then the comments.
func (c *Client) Comments(ctx context.Context, postID string) ([]post.Comment, error) {
	endpoint := fmt.Sprintf("%s/comments/%s.json", c.baseURL, url.PathEscape(postID))

	var pages []listing
	if err := c.getJSON(ctx, endpoint, &pages); err != nil {
		return nil, fmt.Errorf("comments for %s: %w", postID, err)
	}
	if len(pages) < 2 {
		return nil, nil
	}

	comments := make([]post.Comment, 0, len(pages[1].Data.Children))
	for _, child := range pages[1].Data.Children {
		d := child.Data
		if d.ID == "" || d.Body == "" {
			continue
		}
		comments = append(comments, post.Comment{
			ID:     d.ID,
			Body:   d.Body,
			Author: d.Author,
			Score:  d.Score,
		})
	}
	return comments, nil
}

func (c *Client) toPosts(l listing) []post.Post {
	now := c.now()
	posts := make([]post.Post, 0, len(l.Data.Children))
	for _, child := range l.Data.Children {
		d := child.Data
		if d.ID == "" {
			continue
		}

		age := 0.0
		if d.CreatedUTC > 0 {
			age = now.Sub(time.Unix(int64(d.CreatedUTC), 0)).Hours()
		}

		posts = append(posts, post.Post{
			ID:          d.ID,
			Title:       d.Title,
			Body:        d.SelfText,
			Score:       d.Score,
			NumComments: d.NumComments,
			AgeHours:    age,
			Subreddit:   d.Subreddit,
			URL:         c.baseURL + d.Permalink,
		})
	}
	return posts
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		logging.Warn("Rate limited by platform", "endpoint", endpoint)
		return fmt.Errorf("platform returned status 429")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("platform returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
