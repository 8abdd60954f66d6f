package store

import (
	"fmt"
	"time"
)

// MarkReplied records that a post has been acted on.
func (s *Store) MarkReplied(postID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO replied_posts (post_id, replied_at) VALUES (?, ?)",
		postID, at,
	)
	if err != nil {
		return fmt.Errorf("mark replied: %w", err)
	}
	return nil
}

// RepliedIDs returns the full replied-post set. Loaded once per run and
// consulted in memory during filtering.
func (s *Store) RepliedIDs() (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT post_id FROM replied_posts")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids[id] = true
	}
	return ids, nil
}
