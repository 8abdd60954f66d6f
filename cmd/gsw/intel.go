package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mbarlow/groundswell/internal/intel"
	"github.com/mbarlow/groundswell/internal/post"
)

func runIntel() {
	fs := flag.NewFlagSet("intel", flag.ExitOnError)
	subs := fs.String("subreddits", "", "Comma-separated subreddits (default: config list)")
	limit := fs.Int("limit", 25, "Per-subreddit fetch limit")
	recent := fs.Int("recent", 0, "Just print the N most recent persisted analyses")
	rss := fs.Bool("rss", false, "Fetch listings over RSS instead of the JSON endpoints")
	timeout := fs.Duration("timeout", 2*time.Minute, "Overall run timeout")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	st := openDB()
	defer st.Close()

	analyzer := intel.NewAnalyzer(st, cfg.Keywords)

	if *recent > 0 {
		analyses, err := analyzer.Recent(*recent)
		if err != nil {
			fmt.Fprintf(os.Stderr, "intel: %v\n", err)
			os.Exit(1)
		}
		header(fmt.Sprintf("Recent analyses (%d)", len(analyses)))
		for _, a := range analyses {
			fmt.Printf("  [%s] %s\n", a.Sentiment, a.Title)
		}
		return
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
			fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf("intel: r/%s: %v", sub, err)))
			continue
		}
		posts = append(posts, found...)
	}

	if _, err := analyzer.AnalyzeBatch(posts); err != nil {
		fmt.Fprintf(os.Stderr, "intel: %v\n", err)
		os.Exit(1)
	}
	ins := analyzer.AggregateInsights(posts)

	header(fmt.Sprintf("Market intelligence (%d posts)", ins.Total))
	for sentiment, n := range ins.BySentiment {
		fmt.Printf("  %-12s %d\n", sentiment, n)
	}
	if len(ins.TopMentions) > 0 {
		fmt.Println()
		header("Top mentions")
		for _, m := range ins.TopMentions {
			fmt.Printf("  %-20s %d\n", m.Term, m.Count)
		}
	}
	fmt.Println()
	header("Takeaways")
	for _, line := range ins.Summary {
		fmt.Println("  " + line)
	}
}
