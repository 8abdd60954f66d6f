// Package engage sequences a full engagement pass: search candidates
// across subreddits, score and bucket them, veto duplicate drafts, gate
// dispatch behind the pacing rules, and hand deployed comments to the
// sniper tracker. One bad candidate never aborts the batch.
package engage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mbarlow/groundswell/internal/config"
	"github.com/mbarlow/groundswell/internal/dedup"
	"github.com/mbarlow/groundswell/internal/logging"
	"github.com/mbarlow/groundswell/internal/pacing"
	"github.com/mbarlow/groundswell/internal/platform"
	"github.com/mbarlow/groundswell/internal/post"
	"github.com/mbarlow/groundswell/internal/scoring"
	"github.com/mbarlow/groundswell/internal/sniper"
	"github.com/mbarlow/groundswell/internal/store"
)

// maxConcurrentSearches limits parallel subreddit searches.
const maxConcurrentSearches = 4

// PlatformClient is the read surface the engine needs. Satisfied by
// platform.Client; tests inject fakes.
type PlatformClient interface {
	Search(ctx context.Context, subreddit, query string, limit int) ([]post.Post, error)
	Comments(ctx context.Context, postID string) ([]post.Comment, error)
}

// Generator drafts a reply for a candidate. The paid generation service
// sits behind this boundary; it is only invoked for posts that survived
// every filter.
type Generator interface {
	Generate(ctx context.Context, p post.Post, category scoring.Category, angles []string) (string, error)
}

// Options tunes a single engagement run.
type Options struct {
	Subreddits []string // empty: config defaults
	Query      string   // empty: primary keywords joined with OR
	Limit      int      // per-subreddit search limit
	Deploy     bool     // false: score and report only, touch nothing
}

// Result is the accounting for one run.
type Result struct {
	Searched      int // posts returned by search
	ForGeneration int // survived filtering, in the generation bucket
	Maybe         int
	Skipped       int
	Duplicates    int // drafts vetoed by the duplicate check
	Deployed      int
	Queued        int // gated by pacing, deferred to the action queue
	Errors        []error
}

// Engine wires the decision layer together.
type Engine struct {
	cfg       *config.Config
	store     *store.Store
	scorer    *scoring.Scorer
	detector  *dedup.Detector
	pacer     *pacing.Controller
	tracker   *sniper.Tracker
	client    PlatformClient
	generator Generator
	poster    platform.Poster
}

// NewEngine builds an Engine. The generator and poster may be nil when
// Deploy is never requested.
func NewEngine(cfg *config.Config, s *store.Store, client PlatformClient, gen Generator, poster platform.Poster) *Engine {
	return &Engine{
		cfg:       cfg,
		store:     s,
		scorer:    scoring.NewScorer(cfg),
		detector:  dedup.NewDetector(cfg.Thresholds.SimilarityThreshold, nil),
		pacer:     pacing.NewController(s, cfg.Thresholds),
		tracker:   sniper.NewTracker(s),
		client:    client,
		generator: gen,
		poster:    poster,
	}
}

// Pacer exposes the engine's pacing controller for status reporting.
func (e *Engine) Pacer() *pacing.Controller { return e.pacer }

// Tracker exposes the engine's sniper tracker.
func (e *Engine) Tracker() *sniper.Tracker { return e.tracker }

type repliedSet map[string]bool

func (r repliedSet) Contains(postID string) bool { return r[postID] }

// Run executes one engagement pass. Searches run concurrently per
// subreddit; a failed subreddit contributes an error and nothing else.
// Everything after search is sequential: pacing decisions are ordered
// by construction.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	subreddits := opts.Subreddits
	if len(subreddits) == 0 {
		subreddits = e.cfg.Subreddits
	}
	query := opts.Query
	if query == "" {
		query = strings.Join(e.cfg.Keywords.Primary, " OR ")
	}

	res := &Result{}

	var mu sync.Mutex
	var posts []post.Post

	var g errgroup.Group
	g.SetLimit(maxConcurrentSearches)
	for _, sub := range subreddits {
		g.Go(func() error {
			found, err := e.client.Search(ctx, sub, query, opts.Limit)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Errors = append(res.Errors, fmt.Errorf("search r/%s: %w", sub, err))
				return nil
			}
			posts = append(posts, found...)
			return nil
		})
	}
	_ = g.Wait() // search errors are collected, never fatal

	res.Searched = len(posts)

	repliedIDs, err := e.store.RepliedIDs()
	if err != nil {
		return res, fmt.Errorf("load replied set: %w", err)
	}

	buckets := e.scorer.Filter(posts, repliedSet(repliedIDs), e.cfg.Thresholds)
	res.ForGeneration = len(buckets.ForGeneration)
	res.Maybe = len(buckets.Maybe)
	res.Skipped = len(buckets.Skipped)

	logging.Info("Engagement pass scored",
		"searched", res.Searched,
		"for_generation", res.ForGeneration,
		"maybe", res.Maybe,
		"skipped", res.Skipped)

	if !opts.Deploy {
		return res, nil
	}
	if e.generator == nil || e.poster == nil {
		return res, fmt.Errorf("deploy requested without a generator and poster")
	}

	for i := range buckets.ForGeneration {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, err)
			break
		}
		if err := e.engageOne(ctx, &buckets.ForGeneration[i], res); err != nil {
			res.Errors = append(res.Errors, err)
		}
	}

	return res, nil
}

// engageOne runs a single candidate through generation, the duplicate
// veto, the pacing gate, and dispatch.
func (e *Engine) engageOne(ctx context.Context, p *post.Post, res *Result) error {
	comments, err := e.client.Comments(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("comments for %s: %w", p.ID, err)
	}

	category := e.scorer.Categorize(p)
	angles := e.detector.SuggestAngles(comments, e.cfg.Aspects)

	draft, err := e.generator.Generate(ctx, *p, category, angles)
	if err != nil {
		return fmt.Errorf("generate for %s: %w", p.ID, err)
	}

	verdict := e.detector.Check(draft, comments)
	if verdict.IsDuplicate {
		res.Duplicates++
		logging.Info("Draft vetoed as duplicate", "post_id", p.ID, "reason", verdict.Reason)
		return nil
	}

	decision, err := e.pacer.CanPostNow(p.Subreddit)
	if err != nil {
		return fmt.Errorf("pacing check for %s: %w", p.ID, err)
	}
	if !decision.CanPost {
		if err := e.pacer.QueueAction(store.QueuedAction{
			Kind:      "comment",
			Subreddit: p.Subreddit,
			TargetID:  p.ID,
			Priority:  queuePriority(p.RelevanceScore),
			Payload:   draft,
		}); err != nil {
			return fmt.Errorf("queue for %s: %w", p.ID, err)
		}
		res.Queued++
		logging.Info("Candidate deferred", "post_id", p.ID, "reason", decision.Reason)
		return nil
	}

	commentID, err := e.poster.PostComment(ctx, p.ID, draft)
	if err != nil {
		return fmt.Errorf("post to %s: %w", p.ID, err)
	}

	// Dispatch succeeded; the bookkeeping below must not undo it, so
	// failures are reported but the candidate counts as deployed.
	res.Deployed++
	if err := e.store.MarkReplied(p.ID, e.pacer.Now()); err != nil {
		return fmt.Errorf("mark replied %s: %w", p.ID, err)
	}
	if err := e.pacer.RecordAction(p.Subreddit, "comment"); err != nil {
		return fmt.Errorf("record action for %s: %w", p.ID, err)
	}
	if err := e.tracker.Deploy(p.ID, commentID, draft, p.Subreddit, e.cfg.Triggers); err != nil {
		return fmt.Errorf("track deployment %s: %w", p.ID, err)
	}

	return nil
}

// queuePriority maps a relevance score onto the 1-5 queue scale.
func queuePriority(relevance int) int {
	switch {
	case relevance >= 80:
		return 5
	case relevance >= 65:
		return 4
	case relevance >= 50:
		return 3
	case relevance >= 35:
		return 2
	default:
		return 1
	}
}

// MonitorTriggers runs the sniper pass over every monitoring
// deployment, fetching replies through the platform client.
func (e *Engine) MonitorTriggers(ctx context.Context) ([]store.Notification, error) {
	return e.tracker.CheckAll(func(postID string) ([]post.Comment, error) {
		return e.client.Comments(ctx, postID)
	})
}
