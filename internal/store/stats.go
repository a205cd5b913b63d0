package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath         string         `json:"db_path"`
	DBSizeBytes    int64          `json:"db_size_bytes"`
	TotalSessions  int            `json:"total_sessions"`
	ActiveSessions int            `json:"active_sessions"`
	TotalSegments  int            `json:"total_segments"`
	SampleBytes    int64          `json:"sample_bytes"`
	Patterns       []PatternStats `json:"patterns"`
}

// PatternStats holds per-pattern counts of active sessions.
type PatternStats struct {
	Domain  string `json:"domain"`
	Pattern string `json:"pattern"`
	Count   int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&st.TotalSessions)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE deleted_at IS NULL`).Scan(&st.ActiveSessions)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(LENGTH(samples)), 0) FROM segments`).Scan(&st.TotalSegments, &st.SampleBytes)

	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, pattern, COUNT(*) AS cnt
		FROM sessions WHERE deleted_at IS NULL
		GROUP BY domain, pattern ORDER BY cnt DESC, domain, pattern`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ps PatternStats
		rows.Scan(&ps.Domain, &ps.Pattern, &ps.Count)
		st.Patterns = append(st.Patterns, ps)
	}

	return st, nil
}
