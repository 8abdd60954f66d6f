package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mbarlow/groundswell/internal/post"
	"github.com/mbarlow/groundswell/internal/scoring"
)

func runKarma() {
	fs := flag.NewFlagSet("karma", flag.ExitOnError)
	subs := fs.String("subreddits", "", "Comma-separated subreddits (default: config list)")
	limit := fs.Int("limit", 25, "Per-subreddit fetch limit")
	rss := fs.Bool("rss", false, "Fetch listings over RSS instead of the JSON endpoints")
	timeout := fs.Duration("timeout", 2*time.Minute, "Overall run timeout")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	st := openDB()
	defer st.Close()

	replied, err := st.RepliedIDs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "karma: %v\n", err)
		os.Exit(1)
	}

	subreddits := splitList(*subs)
	if len(subreddits) == 0 {
		subreddits = cfg.Subreddits
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := newLister(*rss)
	var posts []post.Post
	for _, sub := range subreddits {
		found, err := client.NewPosts(ctx, sub, *limit)
		if err != nil {
			fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf("karma: r/%s: %v", sub, err)))
			continue
		}
		posts = append(posts, found...)
	}

	scorer := scoring.NewScorer(cfg)
	opportunities := scorer.KarmaOpportunities(posts, repliedSet(replied))

	header(fmt.Sprintf("Karma opportunities (%d of %d posts)", len(opportunities), len(posts)))
	if len(opportunities) == 0 {
		fmt.Println(dimStyle.Render("  none — no fresh, lightly-answered questions found"))
		return
	}

	for i, op := range opportunities {
		fmt.Printf("  %2d. [%3d] r/%-20s %s\n", i+1, op.Score, op.Post.Subreddit, op.Post.Title)
		fmt.Printf("      %s\n", dimStyle.Render(fmt.Sprintf("%d comments, %.0fh old — %s", op.Post.NumComments, op.Post.AgeHours, op.Post.URL)))
	}
}
