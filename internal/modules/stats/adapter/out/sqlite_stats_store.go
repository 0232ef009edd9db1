package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tdrill/internal/modules/stats/domain"
	statsout "tdrill/internal/modules/stats/port/out"

	_ "modernc.org/sqlite"
)

type SQLiteStatsStore struct {
	db *sql.DB
}

func NewSQLiteStatsStore(dbPath string) (*SQLiteStatsStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; the TUI and the stats sink share the handle
	db.SetMaxOpenConns(1)
	store := &SQLiteStatsStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

var _ statsout.StatsStore = (*SQLiteStatsStore)(nil)

func (s *SQLiteStatsStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS session_stats (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  timestamp_ms INTEGER NOT NULL,
  total_responses INTEGER NOT NULL,
  correct_responses INTEGER NOT NULL,
  average_reaction_ms INTEGER
);
CREATE INDEX IF NOT EXISTS session_stats_timestamp ON session_stats(timestamp_ms DESC);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create session_stats table: %w", err)
	}
	return nil
}

func (s *SQLiteStatsStore) Insert(ctx context.Context, stats domain.SessionStats) (int64, error) {
	const stmt = `
INSERT INTO session_stats (timestamp_ms, total_responses, correct_responses, average_reaction_ms)
VALUES (?, ?, ?, ?);
`
	var avg sql.NullInt64
	if stats.AverageReactionMs != nil {
		avg = sql.NullInt64{Int64: *stats.AverageReactionMs, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, stmt, stats.Timestamp.UnixMilli(), stats.TotalResponses, stats.CorrectResponses, avg)
	if err != nil {
		return 0, fmt.Errorf("insert session stats: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("session stats id: %w", err)
	}
	return id, nil
}

func (s *SQLiteStatsStore) List(ctx context.Context, limit int) ([]domain.SessionStats, error) {
	query := `
SELECT id, timestamp_ms, total_responses, correct_responses, average_reaction_ms
FROM session_stats
ORDER BY timestamp_ms DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session stats: %w", err)
	}
	defer rows.Close()

	var out []domain.SessionStats
	for rows.Next() {
		var (
			stats domain.SessionStats
			tsMs  int64
			avg   sql.NullInt64
		)
		if err := rows.Scan(&stats.ID, &tsMs, &stats.TotalResponses, &stats.CorrectResponses, &avg); err != nil {
			return nil, fmt.Errorf("scan session stats: %w", err)
		}
		stats.Timestamp = time.UnixMilli(tsMs).UTC()
		if avg.Valid {
			v := avg.Int64
			stats.AverageReactionMs = &v
		}
		out = append(out, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session stats: %w", err)
	}
	return out, nil
}

func (s *SQLiteStatsStore) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM session_stats`)
	if err != nil {
		return 0, fmt.Errorf("clear session stats: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteStatsStore) Close() error {
	return s.db.Close()
}
