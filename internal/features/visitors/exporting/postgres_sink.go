package visitors_exporting

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	visitors_core "visitorlogs/internal/features/visitors/core"

	"gorm.io/gorm"
)

const postgresInsertBatchSize = 500

// PostgresSink appends every batch to the visitor_logs table. The table is
// migrated on first write. A failed migration is retried on the next write.
type PostgresSink struct {
	db     *gorm.DB
	logger *slog.Logger

	migrate    func() error
	migrateMu  sync.Mutex
	isMigrated bool
}

func NewPostgresSink(db *gorm.DB, logger *slog.Logger) *PostgresSink {
	sink := &PostgresSink{
		db:     db,
		logger: logger,
	}

	// Not bound to a write's context: a cancelled request must not leave
	// the table unmigrated for the rest of the process.
	sink.migrate = func() error {
		return sink.db.AutoMigrate(&VisitorLogRow{})
	}

	return sink
}

func (s *PostgresSink) Name() string {
	return "postgres"
}

func (s *PostgresSink) Write(ctx context.Context, batch *visitors_core.Batch) error {
	if err := s.ensureMigrated(); err != nil {
		return fmt.Errorf("failed to migrate visitor_logs table: %w", err)
	}

	if batch.Len() == 0 {
		return nil
	}

	rows := NewVisitorLogRows(batch)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, postgresInsertBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert batch %s: %w", batch.ID, err)
	}

	s.logger.Debug("Batch stored in Postgres",
		slog.String("batchId", batch.ID.String()),
		slog.Int("count", len(rows)),
	)

	return nil
}

func (s *PostgresSink) ensureMigrated() error {
	s.migrateMu.Lock()
	defer s.migrateMu.Unlock()

	if s.isMigrated {
		return nil
	}

	if err := s.migrate(); err != nil {
		return err
	}

	s.isMigrated = true

	return nil
}
