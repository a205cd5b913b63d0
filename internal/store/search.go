package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/biosynth/internal/model"
)

// SearchParams holds parameters for searching sessions.
type SearchParams struct {
	Query  string
	Domain model.Domain
	Limit  int
}

// SearchResult wraps a session with the field the query matched.
type SearchResult struct {
	model.Session
	MatchField string `json:"match_field"`
}

// Search finds sessions whose id, pattern, class or feature names match the
// query substring.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "%" + p.Query + "%"
	where := []string{"deleted_at IS NULL"}
	var args []interface{}

	if p.Domain != "" {
		where = append(where, "domain = ?")
		args = append(args, string(p.Domain))
	}

	sql := fmt.Sprintf(`SELECT %s FROM sessions
		WHERE %s AND (id LIKE ? OR pattern LIKE ? OR class LIKE ? OR features LIKE ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, sessionColumns, strings.Join(where, " AND "))
	args = append(args, query, query, query, query, limit)

	sessions, err := s.querySessions(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(sessions))
	for _, sess := range sessions {
		results = append(results, SearchResult{Session: sess, MatchField: matchField(sess, p.Query)})
	}
	return results, nil
}

func matchField(sess model.Session, q string) string {
	q = strings.ToLower(q)
	switch {
	case strings.Contains(strings.ToLower(sess.ID), q):
		return "id"
	case strings.Contains(strings.ToLower(sess.Pattern), q):
		return "pattern"
	case strings.Contains(string(sess.Class), q):
		return "class"
	}
	return "features"
}
