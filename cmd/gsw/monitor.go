package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mbarlow/groundswell/internal/monitor"
	"github.com/mbarlow/groundswell/internal/platform"
	"github.com/mbarlow/groundswell/internal/post"
	"github.com/mbarlow/groundswell/internal/sniper"
)

func runMonitor() {
	fs := flag.NewFlagSet("monitor", flag.ExitOnError)
	watch := fs.String("watch", "", "Add a post URL to the watch list and exit")
	timeout := fs.Duration("timeout", 2*time.Minute, "Overall run timeout")
	fs.Parse(os.Args[1:])

	st := openDB()
	defer st.Close()

	mon := monitor.NewMonitor(st)

	if *watch != "" {
		if err := mon.Watch(*watch); err != nil {
			fmt.Fprintf(os.Stderr, "monitor: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Watching %s\n", *watch)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := platform.NewClient()

	// Sniper pass over monitoring deployments.
	tracker := sniper.NewTracker(st)
	fired, sniperErr := tracker.CheckAll(func(postID string) ([]post.Comment, error) {
		return client.Comments(ctx, postID)
	})

	header("Sniper pass")
	if len(fired) == 0 {
		fmt.Println(dimStyle.Render("  no triggers fired"))
	}
	for _, n := range fired {
		fmt.Printf("  %s r/%s post %s trigger %q\n",
			okStyle.Render("FIRED"), n.Subreddit, n.PostID, n.TriggerWord)
	}
	if sniperErr != nil {
		fmt.Println(warnStyle.Render("  " + sniperErr.Error()))
	}

	// Watched-post pass: classify fresh comments on our own posts.
	watched, err := mon.Watched()
	if err != nil {
		fmt.Fprintf(os.Stderr, "monitor: %v\n", err)
		os.Exit(1)
	}
	if len(watched) == 0 {
		return
	}

	fmt.Println()
	header("Watched posts")
	for _, w := range watched {
		comments, err := client.Comments(ctx, postIDFromURL(w.URL))
		if err != nil {
			fmt.Println(warnStyle.Render(fmt.Sprintf("  %s: %v", w.URL, err)))
			continue
		}

		up, err := mon.CheckPost(w, comments)
		if err != nil {
			fmt.Println(warnStyle.Render(fmt.Sprintf("  %s: %v", w.URL, err)))
			continue
		}
		if len(up.NewComments) == 0 {
			fmt.Printf("  %s %s\n", dimStyle.Render("quiet"), w.URL)
			continue
		}

		fmt.Printf("  %s (%d new)\n", w.URL, len(up.NewComments))
		for _, a := range up.NewComments {
			tag := dimStyle.Render("ignore")
			if a.NeedsResponse {
				switch a.Urgency {
				case monitor.UrgencyHigh:
					tag = badStyle.Render("respond now")
				case monitor.UrgencyMedium:
					tag = warnStyle.Render("respond")
				default:
					tag = okStyle.Render("acknowledge")
				}
			}
			fmt.Printf("    [%s] %s\n", tag, excerpt(a.Comment.Body, 80))
		}
	}
}

// postIDFromURL pulls the post ID out of a permalink like
// .../comments/<id>/slug/. Returns the URL unchanged if it does not
// look like a permalink.
func postIDFromURL(u string) string {
	parts := strings.Split(strings.Trim(u, "/"), "/")
	for i, p := range parts {
		if p == "comments" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return u
}

func excerpt(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
