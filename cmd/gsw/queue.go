package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mbarlow/groundswell/internal/pacing"
)

func runQueue() {
	fs := flag.NewFlagSet("queue", flag.ExitOnError)
	next := fs.Bool("next", false, "Dequeue the next dispatchable action (respects pacing)")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	st := openDB()
	defer st.Close()

	pacer := pacing.NewController(st, cfg.Thresholds)

	if *next {
		a, err := pacer.NextAction()
		if err != nil {
			fmt.Fprintf(os.Stderr, "queue: %v\n", err)
			os.Exit(1)
		}
		if a == nil {
			fmt.Println(dimStyle.Render("nothing dispatchable (queue empty or head gated)"))
			return
		}
		header("Dequeued")
		fmt.Printf("  #%d %s r/%s target %s priority %d\n", a.ID, a.Kind, a.Subreddit, a.TargetID, a.Priority)
		fmt.Printf("  queued %s\n", a.QueuedAt.Format("2006-01-02 15:04"))
		if a.Payload != "" {
			fmt.Printf("  payload: %s\n", excerpt(a.Payload, 120))
		}
		return
	}

	snap, err := pacer.Status()
	if err != nil {
		fmt.Fprintf(os.Stderr, "queue: %v\n", err)
		os.Exit(1)
	}

	header(fmt.Sprintf("Action queue (%d)", snap.QueueSize))
	actions, err := st.QueueAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "queue: %v\n", err)
		os.Exit(1)
	}
	if len(actions) == 0 {
		fmt.Println(dimStyle.Render("  empty"))
		return
	}
	for _, a := range actions {
		fmt.Printf("  #%-4d p%d %-8s r/%-20s %s\n", a.ID, a.Priority, a.Kind, a.Subreddit, a.TargetID)
	}
}
