// Package pacing gates every outgoing action so the account's activity
// pattern stays plausible: a minimum interval between actions, a daily
// cap per subreddit, and a long cooldown after a run of consecutive
// actions. Deferred actions wait in a persisted priority queue.
package pacing

import (
	"container/heap"
	"fmt"
	"math/rand"
	"time"

	"github.com/mbarlow/groundswell/internal/config"
	"github.com/mbarlow/groundswell/internal/logging"
	"github.com/mbarlow/groundswell/internal/store"
)

// Decision is the outcome of a gate check.
type Decision struct {
	CanPost       bool
	Reason        string
	WaitSeconds   int
	NextAvailable time.Time
}

// Controller enforces the pacing rules against the persisted state.
// LastActionTime and the consecutive counter are global across all
// subreddits — three quick actions anywhere trip the cooldown, which is
// the point: the pattern must not look automated network-wide. Daily
// counts are per subreddit per day.
type Controller struct {
	store *store.Store
	cfg   config.ThresholdConfig

	now func() time.Time
	rng *rand.Rand
}

// NewController builds a Controller over the given store.
func NewController(s *store.Store, cfg config.ThresholdConfig) *Controller {
	return &Controller{
		store: s,
		cfg:   cfg,
		now:   time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetClock injects a clock for tests.
func (c *Controller) SetClock(now func() time.Time) { c.now = now }

// SetRand injects a random source for tests.
func (c *Controller) SetRand(rng *rand.Rand) { c.rng = rng }

// Now returns the controller's current time. Callers recording related
// state use this so their timestamps share the injected clock.
func (c *Controller) Now() time.Time { return c.now() }

// CanPostNow checks the gate for a subreddit: daily cap first, then the
// minimum interval (escalated to the cooldown after enough consecutive
// actions). Callers must check this before dispatching anything;
// RecordAction does not re-validate.
func (c *Controller) CanPostNow(subreddit string) (Decision, error) {
	now := c.now()

	day := now.Format("2006-01-02")
	count, err := c.store.DailyCount(subreddit, day)
	if err != nil {
		return Decision{}, fmt.Errorf("read daily count: %w", err)
	}

	if count >= c.cfg.DailyCap {
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
		return Decision{
			CanPost:       false,
			Reason:        fmt.Sprintf("Daily limit reached for r/%s (%d/%d)", subreddit, count, c.cfg.DailyCap),
			WaitSeconds:   int(next.Sub(now).Seconds()),
			NextAvailable: next,
		}, nil
	}

	snap, err := c.store.Pacing()
	if err != nil {
		return Decision{}, fmt.Errorf("read pacing state: %w", err)
	}

	if snap.LastActionTime != nil {
		required := time.Duration(c.cfg.MinDelayMinutes) * time.Minute
		if snap.ConsecutiveCount >= c.cfg.ConsecutiveLimit {
			required = time.Duration(c.cfg.CooldownMinutes) * time.Minute
		}

		elapsed := now.Sub(*snap.LastActionTime)
		if elapsed < required {
			next := snap.LastActionTime.Add(required)
			return Decision{
				CanPost:       false,
				Reason:        fmt.Sprintf("Too soon (need %.0f min, only %.1f min passed)", required.Minutes(), elapsed.Minutes()),
				WaitSeconds:   int((required - elapsed).Seconds()),
				NextAvailable: next,
			}, nil
		}
	}

	return Decision{
		CanPost:       true,
		Reason:        "Ready to post",
		NextAvailable: now,
	}, nil
}

// RecordAction persists one dispatched action. Contract: call this only
// after a successful dispatch that CanPostNow approved — recording
// without dispatching desynchronizes the gate from reality.
func (c *Controller) RecordAction(subreddit, kind string) error {
	now := c.now()

	count, err := c.store.RecordAction(subreddit, now)
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}

	logging.Info("Action recorded",
		"subreddit", subreddit,
		"kind", kind,
		"daily_count", fmt.Sprintf("%d/%d", count, c.cfg.DailyCap))
	return nil
}

// ResetConsecutive zeroes the consecutive counter. Models a deliberate
// break; the counter never decays on its own.
func (c *Controller) ResetConsecutive() error {
	if err := c.store.ResetConsecutive(); err != nil {
		return err
	}
	logging.Info("Consecutive counter reset")
	return nil
}

// RecommendedDelay returns a human-looking delay before the next action:
// uniform minutes in [min,max], then ±20% jitter. Advisory only — the
// gate itself never enforces it.
func (c *Controller) RecommendedDelay() time.Duration {
	minMin, maxMin := c.cfg.MinDelayMinutes, c.cfg.MaxDelayMinutes

	minutes := float64(minMin)
	if maxMin > minMin {
		minutes = float64(minMin + c.rng.Intn(maxMin-minMin+1))
	}

	variance := minutes * 0.2
	minutes += (c.rng.Float64()*2 - 1) * variance

	return time.Duration(minutes * float64(time.Minute))
}

// QueueAction defers an action until the gate opens for its subreddit.
func (c *Controller) QueueAction(a store.QueuedAction) error {
	a.QueuedAt = c.now()

	id, err := c.store.QueueAdd(a)
	if err != nil {
		return err
	}

	logging.Info("Action queued", "id", id, "kind", a.Kind, "subreddit", a.Subreddit, "priority", a.Priority)
	return nil
}

// NextAction dequeues the highest-priority action whose subreddit the
// gate currently approves. Only the head of the queue is considered: if
// it is gated, nothing is returned and the queue is left untouched.
func (c *Controller) NextAction() (*store.QueuedAction, error) {
	actions, err := c.store.QueueAll()
	if err != nil {
		return nil, err
	}
	if len(actions) == 0 {
		return nil, nil
	}

	h := make(actionHeap, 0, len(actions))
	for i := range actions {
		h = append(h, &actions[i])
	}
	heap.Init(&h)

	head := h.peek()
	decision, err := c.CanPostNow(head.Subreddit)
	if err != nil {
		return nil, err
	}
	if !decision.CanPost {
		logging.Debug("Queue head gated", "subreddit", head.Subreddit, "reason", decision.Reason)
		return nil, nil
	}

	if err := c.store.QueueRemove(head.ID); err != nil {
		return nil, fmt.Errorf("dequeue action: %w", err)
	}
	return head, nil
}

// Status reports the persisted pacing state.
func (c *Controller) Status() (store.PacingSnapshot, error) {
	return c.store.Pacing()
}
