package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// WatchedPost is one of our published posts being monitored for new
// comments.
type WatchedPost struct {
	URL             string
	AddedAt         time.Time
	LastChecked     *time.Time
	KnownCommentIDs []string
}

// WatchPost adds a post to the watch list.
func (s *Store) WatchPost(url string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO watched_posts (url, added_at, known_comment_ids) VALUES (?, ?, '[]')",
		url, at,
	)
	if err != nil {
		return fmt.Errorf("watch post: %w", err)
	}
	return nil
}

// WatchedPosts returns the watch list, oldest first.
func (s *Store) WatchedPosts() ([]WatchedPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT url, added_at, last_checked, known_comment_ids
		FROM watched_posts ORDER BY added_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []WatchedPost
	for rows.Next() {
		var w WatchedPost
		var checked sql.NullTime
		var known string
		if err := rows.Scan(&w.URL, &w.AddedAt, &checked, &known); err != nil {
			continue
		}
		if checked.Valid {
			t := checked.Time
			w.LastChecked = &t
		}
		if err := json.Unmarshal([]byte(known), &w.KnownCommentIDs); err != nil {
			w.KnownCommentIDs = nil
		}
		posts = append(posts, w)
	}
	return posts, nil
}

// UpdateWatched replaces a watched post's known comment IDs and stamps
// the check time.
func (s *Store) UpdateWatched(url string, knownIDs []string, checkedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded, err := json.Marshal(knownIDs)
	if err != nil {
		return fmt.Errorf("encode comment ids: %w", err)
	}

	_, err = s.db.Exec(
		"UPDATE watched_posts SET known_comment_ids = ?, last_checked = ? WHERE url = ?",
		string(encoded), checkedAt, url,
	)
	return err
}
