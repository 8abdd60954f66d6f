package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mbarlow/groundswell/internal/engage"
	"github.com/mbarlow/groundswell/internal/platform"
	"github.com/mbarlow/groundswell/internal/post"
	"github.com/mbarlow/groundswell/internal/scoring"
)

// stubGenerator stands in for the paid generation service: it produces
// a labelled placeholder so deploy paths can be exercised in dry runs.
type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, p post.Post, category scoring.Category, angles []string) (string, error) {
	angle := "share a firsthand experience"
	if len(angles) > 0 {
		angle = angles[0]
	}
	return fmt.Sprintf("[draft:%s] reply to %q — %s", category, p.Title, angle), nil
}

func runEngage() {
	fs := flag.NewFlagSet("engage", flag.ExitOnError)
	subs := fs.String("subreddits", "", "Comma-separated subreddits (default: config list)")
	query := fs.String("query", "", "Search query (default: primary keywords)")
	limit := fs.Int("limit", 25, "Per-subreddit search limit")
	deploy := fs.Bool("deploy", false, "Run the full pipeline including dry-run dispatch")
	timeout := fs.Duration("timeout", 2*time.Minute, "Overall run timeout")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	st := openDB()
	defer st.Close()

	engine := engage.NewEngine(cfg, st, platform.NewClient(), stubGenerator{}, platform.NewDryRunPoster())

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res, err := engine.Run(ctx, engage.Options{
		Subreddits: splitList(*subs),
		Query:      *query,
		Limit:      *limit,
		Deploy:     *deploy,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "engage: %v\n", err)
		os.Exit(1)
	}

	header("Engagement pass")
	fmt.Printf("Searched:        %d\n", res.Searched)
	fmt.Printf("For generation:  %s\n", okStyle.Render(fmt.Sprintf("%d", res.ForGeneration)))
	fmt.Printf("Maybe:           %d\n", res.Maybe)
	fmt.Printf("Skipped:         %s\n", dimStyle.Render(fmt.Sprintf("%d", res.Skipped)))
	if *deploy {
		fmt.Printf("Deployed:        %s\n", okStyle.Render(fmt.Sprintf("%d", res.Deployed)))
		fmt.Printf("Queued:          %d\n", res.Queued)
		fmt.Printf("Duplicates:      %s\n", warnStyle.Render(fmt.Sprintf("%d", res.Duplicates)))
	}

	if len(res.Errors) > 0 {
		fmt.Println()
		header(fmt.Sprintf("Errors (%d)", len(res.Errors)))
		for _, e := range res.Errors {
			fmt.Println(badStyle.Render("  " + e.Error()))
		}
		os.Exit(1)
	}
}
