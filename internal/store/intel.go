package store

import "time"

// Analysis is one market-intelligence note about a post.
type Analysis struct {
	ID        int64
	PostID    string
	Title     string
	Sentiment string
	URL       string
	Excerpt   string
	CreatedAt time.Time
}

// SaveAnalysis appends an intel analysis.
func (s *Store) SaveAnalysis(a Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO intel_analyses (post_id, title, sentiment, url, excerpt, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.PostID, a.Title, a.Sentiment, a.URL, a.Excerpt, a.CreatedAt)
	return err
}

// Analyses returns the most recent intel analyses, newest first.
func (s *Store) Analyses(limit int) ([]Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT id, post_id, title, sentiment, url, excerpt, created_at
		FROM intel_analyses ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []Analysis
	for rows.Next() {
		var a Analysis
		if err := rows.Scan(&a.ID, &a.PostID, &a.Title, &a.Sentiment, &a.URL, &a.Excerpt, &a.CreatedAt); err != nil {
			continue
		}
		analyses = append(analyses, a)
	}
	return analyses, nil
}
