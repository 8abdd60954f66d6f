// Command gsw is the groundswell engagement CLI.
//
// Usage:
//
//	gsw                     Show help
//	gsw engage              Search, score and bucket candidates (optionally deploy)
//	gsw monitor             Run the sniper and watched-post passes
//	gsw queue               Show or drain the deferred action queue
//	gsw status              Pacing state and daily counts
//	gsw notifications       Fired trigger notifications
//	gsw karma               Rank credibility-building opportunities
//	gsw intel               Market-intelligence pass over recent candidates
package main

import (
	"fmt"
	"os"

	"github.com/mbarlow/groundswell/internal/config"
	"github.com/mbarlow/groundswell/internal/logging"
)

const usage = `gsw — groundswell engagement CLI

Usage:
  gsw <command> [flags]

Commands:
  engage         Search subreddits, score and bucket candidates
  monitor        Check sniper deployments and watched posts
  queue          Show the deferred action queue (--next to drain one)
  status         Pacing state, daily counts, queue size
  notifications  Fired trigger notifications (--all for read ones too)
  karma          Fresh, lightly-answered questions worth a helpful reply
  intel          Sentiment breakdown over recent candidates

Run 'gsw <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	level := "info"
	if cfg, err := config.Load(); err == nil {
		level = cfg.LogLevel
	}
	if err := logging.Init(level); err != nil {
		fmt.Fprintf(os.Stderr, "gsw: logging init failed: %v\n", err)
	}
	defer logging.Close()

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "engage":
		runEngage()
	case "monitor":
		runMonitor()
	case "queue":
		runQueue()
	case "status":
		runStatus()
	case "notifications":
		runNotifications()
	case "karma":
		runKarma()
	case "intel":
		runIntel()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "gsw: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
