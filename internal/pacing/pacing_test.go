package pacing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/mbarlow/groundswell/internal/config"
	"github.com/mbarlow/groundswell/internal/store"
)

func testThresholds() config.ThresholdConfig {
	return config.DefaultConfig().Thresholds
}

func newTestController(t *testing.T) (*Controller, *fakeClock) {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	clock := &fakeClock{t: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	c := NewController(s, testThresholds())
	c.SetClock(clock.Now)
	c.SetRand(rand.New(rand.NewSource(1)))
	return c, clock
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestFreshStateCanPost(t *testing.T) {
	c, _ := newTestController(t)

	d, err := c.CanPostNow("productivity")
	if err != nil {
		t.Fatalf("CanPostNow: %v", err)
	}
	if !d.CanPost {
		t.Fatalf("fresh state should allow posting, got reason %q", d.Reason)
	}
	if d.Reason != "Ready to post" {
		t.Errorf("reason = %q, want %q", d.Reason, "Ready to post")
	}
}

func TestGateClosesImmediatelyAfterRecord(t *testing.T) {
	c, _ := newTestController(t)

	if err := c.RecordAction("productivity", "comment"); err != nil {
		t.Fatalf("RecordAction: %v", err)
	}

	d, err := c.CanPostNow("productivity")
	if err != nil {
		t.Fatalf("CanPostNow: %v", err)
	}
	if d.CanPost {
		t.Fatal("gate should be closed right after an action")
	}
	if d.WaitSeconds <= 0 {
		t.Errorf("WaitSeconds = %d, want > 0", d.WaitSeconds)
	}
}

func TestGateReopensAfterMinDelay(t *testing.T) {
	c, clock := newTestController(t)
	cfg := testThresholds()

	if err := c.RecordAction("productivity", "comment"); err != nil {
		t.Fatalf("RecordAction: %v", err)
	}
	clock.Advance(time.Duration(cfg.MinDelayMinutes)*time.Minute + time.Second)

	d, err := c.CanPostNow("productivity")
	if err != nil {
		t.Fatalf("CanPostNow: %v", err)
	}
	if !d.CanPost {
		t.Fatalf("gate should reopen after min delay, got %q", d.Reason)
	}
}

func TestConsecutiveActionsTriggerCooldown(t *testing.T) {
	c, clock := newTestController(t)
	cfg := testThresholds()

	step := time.Duration(cfg.MinDelayMinutes)*time.Minute + time.Second
	for i := 0; i < cfg.ConsecutiveLimit; i++ {
		if err := c.RecordAction("productivity", "comment"); err != nil {
			t.Fatalf("RecordAction %d: %v", i, err)
		}
		clock.Advance(step)
	}

	// Min delay has passed but the cooldown has not.
	d, err := c.CanPostNow("productivity")
	if err != nil {
		t.Fatalf("CanPostNow: %v", err)
	}
	if d.CanPost {
		t.Fatal("cooldown should gate the action even after the min delay")
	}

	clock.Advance(time.Duration(cfg.CooldownMinutes) * time.Minute)
	d, err = c.CanPostNow("productivity")
	if err != nil {
		t.Fatalf("CanPostNow: %v", err)
	}
	if !d.CanPost {
		t.Fatalf("cooldown should have elapsed, got %q", d.Reason)
	}
}

func TestConsecutiveCountOnlyResetsExplicitly(t *testing.T) {
	c, clock := newTestController(t)
	cfg := testThresholds()

	step := time.Duration(cfg.CooldownMinutes)*time.Minute + time.Second
	for i := 0; i < cfg.ConsecutiveLimit; i++ {
		if err := c.RecordAction("productivity", "comment"); err != nil {
			t.Fatalf("RecordAction %d: %v", i, err)
		}
		clock.Advance(step)
	}

	snap, err := c.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if snap.ConsecutiveCount != cfg.ConsecutiveLimit {
		t.Fatalf("consecutive count = %d, want %d (waiting must not reset it)", snap.ConsecutiveCount, cfg.ConsecutiveLimit)
	}

	if err := c.ResetConsecutive(); err != nil {
		t.Fatalf("ResetConsecutive: %v", err)
	}
	snap, err = c.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if snap.ConsecutiveCount != 0 {
		t.Errorf("consecutive count after reset = %d, want 0", snap.ConsecutiveCount)
	}
	if snap.LastActionTime == nil {
		t.Error("reset should not clear last action time")
	}
}

func TestDailyCapMentionsDailyLimit(t *testing.T) {
	c, clock := newTestController(t)
	cfg := testThresholds()

	sameDay := 30 * time.Second
	for i := 0; i < cfg.DailyCap; i++ {
		if err := c.RecordAction("productivity", "comment"); err != nil {
			t.Fatalf("RecordAction %d: %v", i, err)
		}
		clock.Advance(sameDay)
	}
	// Past every interval gate so the cap alone decides.
	clock.Advance(time.Duration(cfg.CooldownMinutes+cfg.MinDelayMinutes) * time.Minute)
	if clock.Now().Day() != 30 {
		t.Fatal("test drifted past midnight, tighten the advances")
	}

	d, err := c.CanPostNow("productivity")
	if err != nil {
		t.Fatalf("CanPostNow: %v", err)
	}
	if d.CanPost {
		t.Fatal("daily cap should close the gate")
	}
	if want := "Daily limit"; len(d.Reason) < len(want) || d.Reason[:len(want)] != want {
		t.Errorf("reason = %q, want prefix %q", d.Reason, want)
	}
	if !d.NextAvailable.After(clock.Now()) {
		t.Errorf("NextAvailable = %v, want after %v", d.NextAvailable, clock.Now())
	}

	// Other subreddits keep their own daily cap.
	d, err = c.CanPostNow("selfimprovement")
	if err != nil {
		t.Fatalf("CanPostNow: %v", err)
	}
	if !d.CanPost {
		t.Errorf("cap on one subreddit should not gate another, got %q", d.Reason)
	}
}

func TestRecommendedDelayStaysInJitteredRange(t *testing.T) {
	c, _ := newTestController(t)
	cfg := testThresholds()

	lo := time.Duration(float64(cfg.MinDelayMinutes)*0.8) * time.Minute
	hi := time.Duration(float64(cfg.MaxDelayMinutes)*1.2) * time.Minute
	for i := 0; i < 200; i++ {
		d := c.RecommendedDelay()
		if d < lo || d > hi {
			t.Fatalf("delay %v outside [%v, %v]", d, lo, hi)
		}
	}
}

func TestQueueHeadGatedLeavesQueueIntact(t *testing.T) {
	c, clock := newTestController(t)

	if err := c.QueueAction(store.QueuedAction{Kind: "comment", Subreddit: "productivity", TargetID: "t3_a", Priority: 5}); err != nil {
		t.Fatalf("QueueAction: %v", err)
	}
	if err := c.QueueAction(store.QueuedAction{Kind: "comment", Subreddit: "selfimprovement", TargetID: "t3_b", Priority: 1}); err != nil {
		t.Fatalf("QueueAction: %v", err)
	}

	// Close the gate for the head's subreddit.
	if err := c.RecordAction("productivity", "comment"); err != nil {
		t.Fatalf("RecordAction: %v", err)
	}

	// The head is gated by the global interval, so nothing comes out —
	// the lower-priority action must not jump the queue.
	a, err := c.NextAction()
	if err != nil {
		t.Fatalf("NextAction: %v", err)
	}
	if a != nil {
		t.Fatalf("expected nothing while the head is gated, got %+v", a)
	}

	snap, err := c.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if snap.QueueSize != 2 {
		t.Errorf("queue size = %d, want 2", snap.QueueSize)
	}

	clock.Advance(time.Duration(testThresholds().MinDelayMinutes)*time.Minute + time.Second)
	a, err = c.NextAction()
	if err != nil {
		t.Fatalf("NextAction: %v", err)
	}
	if a == nil || a.TargetID != "t3_a" {
		t.Fatalf("expected the priority-5 action first, got %+v", a)
	}
}

func TestNextActionEmptyQueue(t *testing.T) {
	c, _ := newTestController(t)

	a, err := c.NextAction()
	if err != nil {
		t.Fatalf("NextAction: %v", err)
	}
	if a != nil {
		t.Fatalf("expected nil on empty queue, got %+v", a)
	}
}
