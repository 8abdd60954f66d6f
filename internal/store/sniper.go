package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Deployment statuses. Monitoring transitions to triggered exactly once
// and never back; expired is assigned by external policy.
const (
	StatusMonitoring = "monitoring"
	StatusTriggered  = "triggered"
	StatusExpired    = "expired"
)

// Deployment is a placed sniper comment awaiting a trigger phrase.
type Deployment struct {
	PostID      string
	CommentID   string
	CommentText string
	Subreddit   string
	Triggers    []string
	Status      string
	OpReplied   bool
	DeployedAt  time.Time
	TriggeredAt *time.Time
}

// Notification is emitted once per deployment when a trigger fires.
// Its read state lives here, independent of the deployment record.
type Notification struct {
	ID          int64
	PostID      string
	CommentID   string
	Subreddit   string
	TriggerWord string
	OpCommentID string
	OpComment   string
	Priority    int
	DetectedAt  time.Time
	Read        bool
	HandledAt   *time.Time
}

// SaveDeployment records a newly placed sniper comment.
func (s *Store) SaveDeployment(d Deployment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	triggers, err := json.Marshal(d.Triggers)
	if err != nil {
		return fmt.Errorf("encode triggers: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO deployments (post_id, comment_id, comment_text, subreddit, triggers, status, op_replied, deployed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.PostID, d.CommentID, d.CommentText, d.Subreddit, string(triggers), d.Status, d.OpReplied, d.DeployedAt)
	if err != nil {
		return fmt.Errorf("save deployment: %w", err)
	}
	return nil
}

// MonitoringDeployment returns the deployment still monitoring the given
// post, or nil. At most one active monitor per post.
func (s *Store) MonitoringDeployment(postID string) (*Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`
		SELECT post_id, comment_id, comment_text, subreddit, triggers, status, op_replied, deployed_at, triggered_at
		FROM deployments
		WHERE post_id = ? AND status = ?
	`, postID, StatusMonitoring)

	d, err := scanDeployment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ActiveDeployments returns every deployment still in monitoring state.
func (s *Store) ActiveDeployments() ([]Deployment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT post_id, comment_id, comment_text, subreddit, triggers, status, op_replied, deployed_at, triggered_at
		FROM deployments
		WHERE status = ?
		ORDER BY deployed_at
	`, StatusMonitoring)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deployments []Deployment
	for rows.Next() {
		d, err := scanDeployment(rows)
		if err != nil {
			continue
		}
		deployments = append(deployments, *d)
	}
	return deployments, nil
}

// TriggerDeployment flips a monitoring deployment to triggered and
// records its notification in the same transaction. The guard on status
// makes the transition one-way even under a racing second call.
func (s *Store) TriggerDeployment(postID string, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE deployments
		SET status = ?, op_replied = 1, triggered_at = ?
		WHERE post_id = ? AND status = ?
	`, StatusTriggered, n.DetectedAt, postID, StatusMonitoring)
	if err != nil {
		return fmt.Errorf("trigger deployment: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("no monitoring deployment for post %s", postID)
	}

	if _, err := tx.Exec(`
		INSERT INTO notifications (post_id, comment_id, subreddit, trigger_word, op_comment_id, op_comment, priority, detected_at, read)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)
	`, n.PostID, n.CommentID, n.Subreddit, n.TriggerWord, n.OpCommentID, n.OpComment, n.Priority, n.DetectedAt); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}

	return tx.Commit()
}

// ExpireDeployment marks a monitoring deployment expired. External
// policy decides when a monitoring window has elapsed.
func (s *Store) ExpireDeployment(postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"UPDATE deployments SET status = ? WHERE post_id = ? AND status = ?",
		StatusExpired, postID, StatusMonitoring,
	)
	return err
}

// Notifications returns trigger notifications, newest first.
func (s *Store) Notifications(unreadOnly bool) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT id, post_id, comment_id, subreddit, trigger_word, op_comment_id, op_comment, priority, detected_at, read, handled_at
		FROM notifications
	`
	if unreadOnly {
		query += " WHERE read = 0"
	}
	query += " ORDER BY detected_at DESC"

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		var n Notification
		var opID, opBody, subreddit sql.NullString
		var handled sql.NullTime
		if err := rows.Scan(&n.ID, &n.PostID, &n.CommentID, &subreddit, &n.TriggerWord,
			&opID, &opBody, &n.Priority, &n.DetectedAt, &n.Read, &handled); err != nil {
			continue
		}
		n.Subreddit = subreddit.String
		n.OpCommentID = opID.String
		n.OpComment = opBody.String
		if handled.Valid {
			t := handled.Time
			n.HandledAt = &t
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

// MarkNotificationsRead marks every notification for a post as handled.
func (s *Store) MarkNotificationsRead(postID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"UPDATE notifications SET read = 1, handled_at = ? WHERE post_id = ?",
		at, postID,
	)
	return err
}

// scannable covers both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanDeployment(row scannable) (*Deployment, error) {
	var d Deployment
	var text, subreddit, triggers sql.NullString
	var triggered sql.NullTime

	err := row.Scan(&d.PostID, &d.CommentID, &text, &subreddit, &triggers,
		&d.Status, &d.OpReplied, &d.DeployedAt, &triggered)
	if err != nil {
		return nil, err
	}

	d.CommentText = text.String
	d.Subreddit = subreddit.String
	if triggers.Valid {
		if err := json.Unmarshal([]byte(triggers.String), &d.Triggers); err != nil {
			return nil, fmt.Errorf("decode triggers: %w", err)
		}
	}
	if triggered.Valid {
		t := triggered.Time
		d.TriggeredAt = &t
	}
	return &d, nil
}
