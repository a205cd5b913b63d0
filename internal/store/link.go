package store

import (
	"context"
	"fmt"
	"time"
)

// LinkParams holds parameters for creating/removing a link.
type LinkParams struct {
	FromID string
	ToID   string
	Rel    string // replay_of | variant_of | compares_to
	Remove bool
}

// Link represents a relation between two sessions.
type Link struct {
	FromID    string `json:"from_id"`
	ToID      string `json:"to_id"`
	Rel       string `json:"rel"`
	CreatedAt string `json:"created_at"`
}

const (
	// RelReplayOf marks a session regenerated from another session's seed.
	RelReplayOf   = "replay_of"
	RelVariantOf  = "variant_of"
	RelComparesTo = "compares_to"
)

var validRels = map[string]bool{
	RelReplayOf:   true,
	RelVariantOf:  true,
	RelComparesTo: true,
}

// Link creates or removes a relation between two sessions.
func (s *SQLiteStore) Link(ctx context.Context, p LinkParams) (*Link, error) {
	if !validRels[p.Rel] {
		return nil, fmt.Errorf("invalid relation %q (valid: replay_of, variant_of, compares_to)", p.Rel)
	}
	if p.FromID == p.ToID {
		return nil, fmt.Errorf("cannot link session %s to itself", p.FromID)
	}

	if err := s.requireSession(ctx, p.FromID); err != nil {
		return nil, fmt.Errorf("resolve from: %w", err)
	}
	if err := s.requireSession(ctx, p.ToID); err != nil {
		return nil, fmt.Errorf("resolve to: %w", err)
	}

	if p.Remove {
		_, err := s.db.ExecContext(ctx,
			`DELETE FROM session_links WHERE from_id = ? AND to_id = ? AND rel = ?`,
			p.FromID, p.ToID, p.Rel)
		if err != nil {
			return nil, err
		}
		return &Link{FromID: p.FromID, ToID: p.ToID, Rel: p.Rel}, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO session_links (from_id, to_id, rel, created_at) VALUES (?, ?, ?, ?)`,
		p.FromID, p.ToID, p.Rel, now)
	if err != nil {
		return nil, err
	}

	return &Link{FromID: p.FromID, ToID: p.ToID, Rel: p.Rel, CreatedAt: now}, nil
}

// GetLinks returns all links for a session.
func (s *SQLiteStore) GetLinks(ctx context.Context, sessionID string) ([]Link, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT from_id, to_id, rel, created_at FROM session_links
		 WHERE from_id = ? OR to_id = ?`, sessionID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.FromID, &l.ToID, &l.Rel, &l.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, nil
}

// requireSession checks that an active session exists.
func (s *SQLiteStore) requireSession(ctx context.Context, id string) error {
	var found string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM sessions WHERE id = ? AND deleted_at IS NULL`, id).Scan(&found)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
