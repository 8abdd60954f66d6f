package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mbarlow/groundswell/internal/sniper"
)

func runNotifications() {
	fs := flag.NewFlagSet("notifications", flag.ExitOnError)
	all := fs.Bool("all", false, "Include notifications already marked read")
	markRead := fs.String("mark-read", "", "Mark a post's notifications read and exit")
	fs.Parse(os.Args[1:])

	st := openDB()
	defer st.Close()

	tracker := sniper.NewTracker(st)

	if *markRead != "" {
		if err := tracker.MarkRead(*markRead); err != nil {
			fmt.Fprintf(os.Stderr, "notifications: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Marked notifications for %s read\n", *markRead)
		return
	}

	ns, err := tracker.Notifications(!*all)
	if err != nil {
		fmt.Fprintf(os.Stderr, "notifications: %v\n", err)
		os.Exit(1)
	}

	header(fmt.Sprintf("Notifications (%d)", len(ns)))
	if len(ns) == 0 {
		fmt.Println(dimStyle.Render("  none"))
		return
	}

	for _, n := range ns {
		state := badStyle.Render("unread")
		if n.Read {
			state = dimStyle.Render("read")
		}
		fmt.Printf("  [%s] p%d r/%s post %s trigger %q at %s\n",
			state, n.Priority, n.Subreddit, n.PostID, n.TriggerWord,
			n.DetectedAt.Format("2006-01-02 15:04"))
		fmt.Printf("       %s\n", excerpt(n.OpComment, 100))
	}
}
