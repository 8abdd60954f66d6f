// Package sniper tracks deployed comments and watches the replies under
// them for trigger phrases. A deployment fires at most once: the first
// reply containing any watched phrase flips it to triggered and emits a
// single top-priority notification.
package sniper

import (
	"fmt"
	"strings"
	"time"

	"github.com/mbarlow/groundswell/internal/logging"
	"github.com/mbarlow/groundswell/internal/post"
	"github.com/mbarlow/groundswell/internal/store"
)

// Tracker manages sniper deployments over the persisted state.
type Tracker struct {
	store *store.Store
	now   func() time.Time
}

// NewTracker builds a Tracker over the given store.
func NewTracker(s *store.Store) *Tracker {
	return &Tracker{store: s, now: time.Now}
}

// SetClock injects a clock for tests.
func (t *Tracker) SetClock(now func() time.Time) { t.now = now }

// Deploy registers a placed comment for monitoring. Empty trigger lists
// are accepted; such a deployment simply never fires.
func (t *Tracker) Deploy(postID, commentID, commentText, subreddit string, triggers []string) error {
	if postID == "" {
		return fmt.Errorf("deploy: missing post ID")
	}
	if commentID == "" {
		return fmt.Errorf("deploy: missing comment ID")
	}

	d := store.Deployment{
		PostID:      postID,
		CommentID:   commentID,
		CommentText: commentText,
		Subreddit:   subreddit,
		Triggers:    triggers,
		Status:      store.StatusMonitoring,
		DeployedAt:  t.now(),
	}
	if err := t.store.SaveDeployment(d); err != nil {
		return fmt.Errorf("deploy: %w", err)
	}

	logging.Info("Sniper deployed", "post_id", postID, "subreddit", subreddit, "triggers", len(triggers))
	return nil
}

// CheckTriggers scans replies for the deployment's trigger phrases.
// Replies are checked in order and only the first matching phrase fires;
// the match is a case-insensitive substring test. Returns the emitted
// notification, or nil when the post has no monitoring deployment or no
// reply matched. A deployment already triggered stays triggered —
// calling this again on the same post is a no-op.
func (t *Tracker) CheckTriggers(postID string, replies []post.Comment) (*store.Notification, error) {
	d, err := t.store.MonitoringDeployment(postID)
	if err != nil {
		return nil, fmt.Errorf("check triggers: %w", err)
	}
	if d == nil {
		return nil, nil
	}

	for _, reply := range replies {
		body := strings.ToLower(reply.Body)
		for _, phrase := range d.Triggers {
			if phrase == "" || !strings.Contains(body, strings.ToLower(phrase)) {
				continue
			}

			n := store.Notification{
				PostID:      postID,
				CommentID:   d.CommentID,
				Subreddit:   d.Subreddit,
				TriggerWord: phrase,
				OpCommentID: reply.ID,
				OpComment:   reply.Body,
				Priority:    5,
				DetectedAt:  t.now(),
			}
			if err := t.store.TriggerDeployment(postID, n); err != nil {
				return nil, fmt.Errorf("check triggers: %w", err)
			}

			logging.Info("Sniper triggered",
				"post_id", postID,
				"trigger", phrase,
				"reply_id", reply.ID)
			return &n, nil
		}
	}

	return nil, nil
}

// CheckAll runs CheckTriggers over every monitoring deployment, pulling
// replies through the given fetch function. Fetch failures skip the one
// deployment and are reported together at the end.
func (t *Tracker) CheckAll(fetch func(postID string) ([]post.Comment, error)) ([]store.Notification, error) {
	active, err := t.ActiveMonitors()
	if err != nil {
		return nil, err
	}

	var fired []store.Notification
	var failed int
	for _, d := range active {
		replies, err := fetch(d.PostID)
		if err != nil {
			logging.Warn("Failed to fetch replies", "post_id", d.PostID, "error", err)
			failed++
			continue
		}

		n, err := t.CheckTriggers(d.PostID, replies)
		if err != nil {
			logging.Warn("Trigger check failed", "post_id", d.PostID, "error", err)
			failed++
			continue
		}
		if n != nil {
			fired = append(fired, *n)
		}
	}

	if failed > 0 {
		return fired, fmt.Errorf("%d of %d deployments could not be checked", failed, len(active))
	}
	return fired, nil
}

// Expire retires a monitoring deployment without firing it.
func (t *Tracker) Expire(postID string) error {
	return t.store.ExpireDeployment(postID)
}

// ActiveMonitors lists deployments still in the monitoring state.
func (t *Tracker) ActiveMonitors() ([]store.Deployment, error) {
	return t.store.ActiveDeployments()
}

// Notifications lists fired notifications, newest first.
func (t *Tracker) Notifications(unreadOnly bool) ([]store.Notification, error) {
	return t.store.Notifications(unreadOnly)
}

// MarkRead marks every notification for a post as read and handled.
func (t *Tracker) MarkRead(postID string) error {
	return t.store.MarkNotificationsRead(postID, t.now())
}
