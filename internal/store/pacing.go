package store

import (
	"database/sql"
	"fmt"
	"time"
)

// dailyKeepDays is how long per-subreddit daily counts are retained.
// Anything older is pruned on every write.
const dailyKeepDays = 7

// QueuedAction is a deferred action waiting for the pacing gate to open.
type QueuedAction struct {
	ID        int64
	Kind      string // "post" or "comment"
	Subreddit string
	TargetID  string
	Priority  int // 1-5, 5 = highest
	Payload   string
	QueuedAt  time.Time
}

// PacingSnapshot is the persisted pacing state at a point in time.
type PacingSnapshot struct {
	LastActionTime   *time.Time
	ConsecutiveCount int
	DailyCounts      map[string]int // "subreddit_YYYY-MM-DD" -> count
	QueueSize        int
}

// Pacing returns the current pacing state.
func (s *Store) Pacing() (PacingSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := PacingSnapshot{DailyCounts: make(map[string]int)}

	var last sql.NullTime
	err := s.db.QueryRow(
		"SELECT last_action_time, consecutive_count FROM pacing_state WHERE id = 1",
	).Scan(&last, &snap.ConsecutiveCount)
	if err != nil {
		return snap, fmt.Errorf("read pacing state: %w", err)
	}
	if last.Valid {
		t := last.Time
		snap.LastActionTime = &t
	}

	rows, err := s.db.Query("SELECT subreddit, day, count FROM daily_counts")
	if err != nil {
		return snap, fmt.Errorf("read daily counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var subreddit, day string
		var count int
		if err := rows.Scan(&subreddit, &day, &count); err != nil {
			continue
		}
		snap.DailyCounts[subreddit+"_"+day] = count
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM action_queue").Scan(&snap.QueueSize); err != nil {
		return snap, fmt.Errorf("count queue: %w", err)
	}

	return snap, nil
}

// DailyCount returns today's count for a subreddit.
func (s *Store) DailyCount(subreddit string, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRow(
		"SELECT count FROM daily_counts WHERE subreddit = ? AND day = ?",
		subreddit, day,
	).Scan(&count)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return count, err
}

// RecordAction persists one outgoing action: stamps the last-action time,
// bumps the subreddit's daily count and the consecutive counter, and
// prunes daily counts older than the retention window. One transaction.
func (s *Store) RecordAction(subreddit string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"UPDATE pacing_state SET last_action_time = ?, consecutive_count = consecutive_count + 1 WHERE id = 1",
		now,
	); err != nil {
		return 0, fmt.Errorf("update pacing state: %w", err)
	}

	day := now.Format("2006-01-02")
	if _, err := tx.Exec(`
		INSERT INTO daily_counts (subreddit, day, count) VALUES (?, ?, 1)
		ON CONFLICT(subreddit, day) DO UPDATE SET count = count + 1
	`, subreddit, day); err != nil {
		return 0, fmt.Errorf("bump daily count: %w", err)
	}

	cutoff := now.AddDate(0, 0, -dailyKeepDays).Format("2006-01-02")
	if _, err := tx.Exec("DELETE FROM daily_counts WHERE day < ?", cutoff); err != nil {
		return 0, fmt.Errorf("prune daily counts: %w", err)
	}

	var count int
	if err := tx.QueryRow(
		"SELECT count FROM daily_counts WHERE subreddit = ? AND day = ?",
		subreddit, day,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("read daily count: %w", err)
	}

	return count, tx.Commit()
}

// ResetConsecutive zeroes the consecutive-action counter. This is the
// only way it resets; elapsed time alone never clears it.
func (s *Store) ResetConsecutive() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE pacing_state SET consecutive_count = 0 WHERE id = 1")
	return err
}

// QueueAdd appends an action to the deferred queue.
func (s *Store) QueueAdd(a QueuedAction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		INSERT INTO action_queue (kind, subreddit, target_id, priority, payload, queued_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.Kind, a.Subreddit, a.TargetID, a.Priority, a.Payload, a.QueuedAt)
	if err != nil {
		return 0, fmt.Errorf("queue action: %w", err)
	}
	return res.LastInsertId()
}

// QueueAll returns every queued action ordered highest priority first,
// FIFO within a priority.
func (s *Store) QueueAll() ([]QueuedAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, kind, subreddit, target_id, priority, payload, queued_at
		FROM action_queue
		ORDER BY priority DESC, queued_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []QueuedAction
	for rows.Next() {
		var a QueuedAction
		var target, payload sql.NullString
		if err := rows.Scan(&a.ID, &a.Kind, &a.Subreddit, &target, &a.Priority, &payload, &a.QueuedAt); err != nil {
			continue
		}
		a.TargetID = target.String
		a.Payload = payload.String
		actions = append(actions, a)
	}

	return actions, nil
}

// QueueRemove deletes a dispatched action from the queue.
func (s *Store) QueueRemove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM action_queue WHERE id = ?", id)
	return err
}
