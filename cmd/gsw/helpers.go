package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mbarlow/groundswell/internal/config"
	"github.com/mbarlow/groundswell/internal/platform"
	"github.com/mbarlow/groundswell/internal/post"
	"github.com/mbarlow/groundswell/internal/store"
)

// lister fetches a subreddit's newest posts. Both the JSON client and
// the RSS source satisfy it; the RSS path is the fallback for when the
// JSON endpoints throttle.
type lister interface {
	NewPosts(ctx context.Context, subreddit string, limit int) ([]post.Post, error)
}

// newLister picks the listing transport.
func newLister(useRSS bool) lister {
	if useRSS {
		return platform.NewRSSSource()
	}
	return platform.NewClient()
}

// repliedSet adapts the stored replied-ID map for the scorer.
type repliedSet map[string]bool

func (r repliedSet) Contains(postID string) bool { return r[postID] }

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	badStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// dataDir returns ~/.groundswell/, creating it if needed.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("failed to get home directory: %v", err)
	}
	dir := filepath.Join(home, ".groundswell")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	return dir
}

// dbPath returns the path to groundswell.db.
func dbPath() string {
	return filepath.Join(dataDir(), "groundswell.db")
}

// openDB opens the store or fatals.
func openDB() *store.Store {
	st, err := store.Open(dbPath())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	return st
}

// loadConfig loads ~/.groundswell/config.json or fatals. A missing file
// yields the documented defaults.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

// header prints a styled section heading.
func header(s string) {
	fmt.Println(headerStyle.Render(s))
}

// splitList parses a comma-separated flag value.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
