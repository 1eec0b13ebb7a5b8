package visitors_exporting

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	visitors_core "visitorlogs/internal/features/visitors/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS visitor_logs (
	id             TEXT PRIMARY KEY,
	batch_id       TEXT NOT NULL,
	position       INTEGER NOT NULL,
	ip             TEXT NOT NULL,
	company        TEXT NOT NULL,
	industry       TEXT NOT NULL,
	location       TEXT NOT NULL,
	url            TEXT NOT NULL,
	timestamp      TEXT NOT NULL,
	user_agent     TEXT NOT NULL,
	time_on_page   INTEGER NOT NULL,
	pages_viewed   INTEGER NOT NULL,
	referrer       TEXT NOT NULL,
	traffic_source TEXT NOT NULL,
	visit_count    INTEGER NOT NULL,
	generated_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visitor_logs_batch_position ON visitor_logs(batch_id, position);
CREATE INDEX IF NOT EXISTS idx_visitor_logs_ip ON visitor_logs(ip);
CREATE INDEX IF NOT EXISTS idx_visitor_logs_url ON visitor_logs(url);
`

const sqliteInsert = `
INSERT INTO visitor_logs (
	id, batch_id, position, ip, company, industry, location, url, timestamp,
	user_agent, time_on_page, pages_viewed, referrer, traffic_source, visit_count, generated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`

// SQLiteSink appends every batch to a local SQLite database.
type SQLiteSink struct {
	path   string
	db     *sql.DB
	insert *sql.Stmt
	logger *slog.Logger
}

func NewSQLiteSink(path string, logger *slog.Logger) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", path, err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create visitor_logs table: %w", err)
	}

	insert, err := db.Prepare(sqliteInsert)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare insert statement: %w", err)
	}

	return &SQLiteSink{
		path:   path,
		db:     db,
		insert: insert,
		logger: logger,
	}, nil
}

func (s *SQLiteSink) Name() string {
	return "sqlite"
}

func (s *SQLiteSink) Write(ctx context.Context, batch *visitors_core.Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	insert := tx.StmtContext(ctx, s.insert)
	for _, row := range NewVisitorLogRows(batch) {
		_, err := insert.ExecContext(ctx,
			row.ID.String(),
			row.BatchID.String(),
			row.Position,
			row.IP,
			row.Company,
			row.Industry,
			row.Location,
			row.URL,
			row.Timestamp,
			row.UserAgent,
			row.TimeOnPage,
			row.PagesViewed,
			row.Referrer,
			row.TrafficSource,
			row.VisitCount,
			row.GeneratedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert record %d: %w", row.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	s.logger.Debug("Batch stored in SQLite",
		slog.String("path", s.path),
		slog.String("batchId", batch.ID.String()),
		slog.Int("count", batch.Len()),
	)

	return nil
}

// findByBatch returns the records of one batch in generation order.
func (s *SQLiteSink) findByBatch(ctx context.Context, batchID uuid.UUID) ([]visitors_core.LogRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT
	ip, company, industry, location, url, timestamp, user_agent,
	time_on_page, pages_viewed, referrer, traffic_source, visit_count
FROM visitor_logs
WHERE batch_id = ?
ORDER BY position;
`, batchID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query batch %s: %w", batchID, err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]visitors_core.LogRecord, 0, 64)
	for rows.Next() {
		var record visitors_core.LogRecord
		if err := rows.Scan(
			&record.IP,
			&record.Company,
			&record.Industry,
			&record.Location,
			&record.URL,
			&record.Timestamp,
			&record.UserAgent,
			&record.TimeOnPage,
			&record.PagesViewed,
			&record.Referrer,
			&record.TrafficSource,
			&record.VisitCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}

	return records, nil
}

func (s *SQLiteSink) Close() error {
	if err := s.insert.Close(); err != nil {
		_ = s.db.Close()
		return err
	}

	return s.db.Close()
}
