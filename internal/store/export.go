package store

import (
	"context"
	"strings"

	"github.com/rcliao/biosynth/internal/model"
)

// ExportAll returns all non-deleted session descriptors, optionally filtered
// by domain, oldest first. Samples are not included; a descriptor's seed is
// enough to regenerate them.
func (s *SQLiteStore) ExportAll(ctx context.Context, domain model.Domain) ([]model.Session, error) {
	where := []string{"deleted_at IS NULL"}
	args := []interface{}{}

	if domain != "" {
		where = append(where, "domain = ?")
		args = append(args, string(domain))
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY created_at, id`

	return s.querySessions(ctx, query, args...)
}
