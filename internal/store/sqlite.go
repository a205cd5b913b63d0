package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/biosynth/internal/model"
	"github.com/rcliao/biosynth/internal/segment"
	"github.com/rcliao/biosynth/internal/wire"
)

// timeFormat is fixed-width so stored timestamps sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
// It is safe for concurrent use.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex // guards entropy
	entropy *ulid.MonotonicEntropy
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id            TEXT PRIMARY KEY,
		domain        TEXT NOT NULL,
		pattern       TEXT NOT NULL,
		class         TEXT NOT NULL,
		duration      REAL NOT NULL,
		sampling_rate INTEGER NOT NULL,
		seed          TEXT NOT NULL,
		sample_count  INTEGER NOT NULL,
		channels      TEXT NOT NULL,
		features      TEXT,
		created_at    TEXT NOT NULL,
		deleted_at    TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_domain_pattern ON sessions(domain, pattern);
	CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_sessions_deleted ON sessions(deleted_at);

	CREATE TABLE IF NOT EXISTS segments (
		id          TEXT PRIMARY KEY,
		session_id  TEXT NOT NULL REFERENCES sessions(id),
		channel     INTEGER NOT NULL,
		seq         INTEGER NOT NULL,
		sample_start INTEGER NOT NULL,
		sample_end   INTEGER NOT NULL,
		samples     BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_segments_session ON segments(session_id, channel, seq);

	CREATE TABLE IF NOT EXISTS session_links (
		from_id    TEXT NOT NULL REFERENCES sessions(id),
		to_id      TEXT NOT NULL REFERENCES sessions(id),
		rel        TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (from_id, to_id, rel)
	);
	CREATE INDEX IF NOT EXISTS idx_links_to ON session_links(to_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

const sessionColumns = `id, domain, pattern, class, duration, sampling_rate, seed,
	sample_count, channels, features, created_at, deleted_at,
	(SELECT COUNT(*) FROM segments g WHERE g.session_id = sessions.id)`

func (s *SQLiteStore) Put(ctx context.Context, p PutParams) (*model.Session, error) {
	if p.Signal == nil || len(p.Signal.Samples) == 0 {
		return nil, fmt.Errorf("put: signal is required")
	}
	now := time.Now().UTC()
	id := s.newID()
	n := p.Signal.Len()

	channelsJSON, _ := json.Marshal(p.Signal.Channels)
	var featuresJSON *string
	if !p.Features.Empty() {
		b, err := json.Marshal(p.Features)
		if err != nil {
			return nil, fmt.Errorf("encode features: %w", err)
		}
		f := string(b)
		featuresJSON = &f
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, domain, pattern, class, duration, sampling_rate, seed, sample_count, channels, features, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(p.Domain), p.Pattern, string(p.Class), p.Duration, p.SamplingRate,
		strconv.FormatUint(p.Seed, 10), n, string(channelsJSON), featuresJSON,
		now.Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	// Segment every channel on whole-second boundaries
	segs := segment.Split(n, segment.Every(p.SamplingRate, n), p.Segments)
	count := 0
	for ch, x := range p.Signal.Samples {
		for seq, sg := range segs {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO segments (id, session_id, channel, seq, sample_start, sample_end, samples)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				s.newID(), id, ch, seq, sg.Start, sg.End, wire.EncodeFloat64(x[sg.Start:sg.End]))
			if err != nil {
				return nil, fmt.Errorf("insert segment: %w", err)
			}
			count++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &model.Session{
		ID:           id,
		Domain:       p.Domain,
		Pattern:      p.Pattern,
		Class:        p.Class,
		Duration:     p.Duration,
		SamplingRate: p.SamplingRate,
		Seed:         p.Seed,
		SampleCount:  n,
		Channels:     p.Signal.Channels,
		Features:     p.Features,
		CreatedAt:    now,
		Segments:     count,
		Signal:       p.Signal,
	}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, p GetParams) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ? AND deleted_at IS NULL`, p.ID)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}
	if err != nil {
		return nil, err
	}

	if p.WithSamples {
		sig, err := s.loadSignal(ctx, &sess)
		if err != nil {
			return nil, fmt.Errorf("load samples: %w", err)
		}
		sess.Signal = sig
	}
	return &sess, nil
}

// loadSignal reassembles the channel-major sample matrix from segments.
func (s *SQLiteStore) loadSignal(ctx context.Context, sess *model.Session) (*model.Signal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT channel, sample_start, sample_end, samples FROM segments
		 WHERE session_id = ? ORDER BY channel, seq`, sess.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	samples := make([][]float64, len(sess.Channels))
	for ch := range samples {
		samples[ch] = make([]float64, sess.SampleCount)
	}
	for rows.Next() {
		var ch, start, end int
		var blob []byte
		if err := rows.Scan(&ch, &start, &end, &blob); err != nil {
			return nil, err
		}
		x, err := wire.DecodeFloat64(blob)
		if err != nil {
			return nil, err
		}
		if ch < 0 || ch >= len(samples) || start < 0 || end > sess.SampleCount || len(x) != end-start {
			return nil, fmt.Errorf("corrupt segment %d [%d, %d) in session %s", ch, start, end, sess.ID)
		}
		copy(samples[ch][start:end], x)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &model.Signal{
		Domain:       sess.Domain,
		Pattern:      sess.Pattern,
		SamplingRate: sess.SamplingRate,
		Channels:     sess.Channels,
		Samples:      samples,
	}, nil
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]model.Session, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"deleted_at IS NULL"}
	var args []interface{}

	if p.Domain != "" {
		where = append(where, "domain = ?")
		args = append(args, string(p.Domain))
	}
	if p.Pattern != "" {
		where = append(where, "pattern = ?")
		args = append(args, p.Pattern)
	}
	if p.Class != "" {
		where = append(where, "class = ?")
		args = append(args, string(p.Class))
	}

	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE %s ORDER BY created_at DESC, id DESC LIMIT ?`,
		sessionColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	return s.querySessions(ctx, query, args...)
}

func (s *SQLiteStore) Rm(ctx context.Context, p RmParams) error {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM sessions WHERE id = ? AND deleted_at IS NULL`, p.ID).Scan(&id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, p.ID)
	}

	if p.Hard {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()
		if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE session_id = ?`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_links WHERE from_id = ? OR to_id = ?`, id, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
			return err
		}
		return tx.Commit()
	}

	now := time.Now().UTC().Format(timeFormat)
	_, err = s.db.ExecContext(ctx, `UPDATE sessions SET deleted_at = ? WHERE id = ?`, now, id)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) querySessions(ctx context.Context, query string, args ...interface{}) ([]model.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row scanner) (model.Session, error) {
	var m model.Session
	var domain, class, seed, channels, createdAt string
	var features, deletedAt sql.NullString

	err := row.Scan(
		&m.ID, &domain, &m.Pattern, &class, &m.Duration, &m.SamplingRate, &seed,
		&m.SampleCount, &channels, &features, &createdAt, &deletedAt, &m.Segments,
	)
	if err != nil {
		return m, err
	}

	m.Domain = model.Domain(domain)
	m.Class = model.Class(class)
	m.Seed, _ = strconv.ParseUint(seed, 10, 64)
	m.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	json.Unmarshal([]byte(channels), &m.Channels)
	if features.Valid {
		json.Unmarshal([]byte(features.String), &m.Features)
	}
	if deletedAt.Valid {
		t, _ := time.Parse(timeFormat, deletedAt.String)
		m.DeletedAt = &t
	}

	return m, nil
}
