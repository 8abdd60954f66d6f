package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mbarlow/groundswell/internal/pacing"
)

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	reset := fs.Bool("reset-consecutive", false, "Zero the consecutive-action counter")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	st := openDB()
	defer st.Close()

	pacer := pacing.NewController(st, cfg.Thresholds)

	if *reset {
		if err := pacer.ResetConsecutive(); err != nil {
			fmt.Fprintf(os.Stderr, "status: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Consecutive counter reset")
		return
	}

	snap, err := pacer.Status()
	if err != nil {
		fmt.Fprintf(os.Stderr, "status: %v\n", err)
		os.Exit(1)
	}

	header("Pacing")
	if snap.LastActionTime == nil {
		fmt.Println("  last action:       " + dimStyle.Render("never"))
	} else {
		fmt.Printf("  last action:       %s (%s ago)\n",
			snap.LastActionTime.Format("2006-01-02 15:04"),
			time.Since(*snap.LastActionTime).Round(time.Minute))
	}
	consecutive := fmt.Sprintf("%d/%d", snap.ConsecutiveCount, cfg.Thresholds.ConsecutiveLimit)
	if snap.ConsecutiveCount >= cfg.Thresholds.ConsecutiveLimit {
		consecutive = warnStyle.Render(consecutive + " (cooldown active)")
	}
	fmt.Printf("  consecutive:       %s\n", consecutive)
	fmt.Printf("  queued actions:    %d\n", snap.QueueSize)

	for _, sub := range cfg.Subreddits {
		d, err := pacer.CanPostNow(sub)
		if err != nil {
			continue
		}
		state := okStyle.Render("ready")
		if !d.CanPost {
			state = warnStyle.Render(d.Reason)
		}
		fmt.Printf("  r/%-22s %s\n", sub, state)
	}

	if len(snap.DailyCounts) > 0 {
		fmt.Println()
		header("Daily counts")
		for key, n := range snap.DailyCounts {
			fmt.Printf("  %-32s %d/%d\n", key, n, cfg.Thresholds.DailyCap)
		}
	}
}
