// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dispatch

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver (pure Go, no CGO)

	"github.com/ManuGH/playstate/internal/eventdata"
	"github.com/ManuGH/playstate/internal/log"
	"github.com/ManuGH/playstate/internal/metrics"
)

// SpooledRecord is a record waiting in the SQLite spool.
type SpooledRecord struct {
	ID           int64
	ImpressionID string
	State        string
	CreatedAt    time.Time
	Payload      []byte
}

// SQLite spools records to a local database so an uploader can drain them
// later with Pending and Ack. Records are spooled whether or not the sink
// is enabled; the flag only marks session boundaries.
type SQLite struct {
	db      *sql.DB
	timeout time.Duration
	logger  zerolog.Logger

	mu      sync.Mutex
	enabled bool
}

// NewSQLite opens (or creates) the spool at path.
func NewSQLite(path string, logger zerolog.Logger) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open spool: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping spool: %w", err)
	}

	s := &SQLite{
		db:      db,
		timeout: defaultRedisTimeout,
		logger:  logger.With().Str(log.FieldSink, "sqlite").Logger(),
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate spool: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		impression_id TEXT NOT NULL,
		sequence_number INTEGER NOT NULL,
		state TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		payload BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_records_impression ON records(impression_id, sequence_number);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Add inserts r, blocking for up to the write timeout.
func (s *SQLite) Add(ctx context.Context, r eventdata.Record) {
	payload, err := json.Marshal(r)
	if err != nil {
		metrics.IncRecordFailed("sqlite")
		s.logger.Warn().Err(err).Str(log.FieldImpressionID, r.ImpressionID).Msg("record encode failed")
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
	INSERT INTO records (impression_id, sequence_number, state, created_at, payload)
	VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, r.ImpressionID, r.SequenceNumber, r.State, r.Time, payload); err != nil {
		metrics.IncRecordFailed("sqlite")
		lg := log.WithContext(ctx, s.logger)
		lg.Warn().Err(err).Msg("spool insert failed")
		return
	}
	metrics.IncRecordDispatched("sqlite", r.State)
}

func (s *SQLite) Enable() {
	s.mu.Lock()
	s.enabled = true
	s.mu.Unlock()
}

func (s *SQLite) Disable() {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()
}

// Pending returns up to limit spooled records, oldest first.
func (s *SQLite) Pending(ctx context.Context, limit int) ([]SpooledRecord, error) {
	query := `
	SELECT id, impression_id, state, created_at, payload
	FROM records
	ORDER BY id
	LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query spool: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []SpooledRecord
	for rows.Next() {
		var rec SpooledRecord
		var created int64
		if err := rows.Scan(&rec.ID, &rec.ImpressionID, &rec.State, &created, &rec.Payload); err != nil {
			return nil, fmt.Errorf("scan spool row: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Ack removes delivered records from the spool.
func (s *SQLite) Ack(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ack: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM records WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare ack: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("ack record %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of spooled records.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}

// Enabled reports the last Enable/Disable call.
func (s *SQLite) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
