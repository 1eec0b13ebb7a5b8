package visitors_exporting

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	visitors_core "visitorlogs/internal/features/visitors/core"
	"visitorlogs/internal/util/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSQLiteSink(t *testing.T) (*SQLiteSink, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "visitorLogs.sqlite")
	sink, err := NewSQLiteSink(path, logger.GetLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })

	return sink, path
}

func Test_SQLiteSink_WithBatch_StoresRecordsInOrder(t *testing.T) {
	sink, _ := createTestSQLiteSink(t)
	batch := createTestBatch(t, 30)

	require.NoError(t, sink.Write(context.Background(), batch))

	records, err := sink.findByBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.Equal(t, batch.Records, records)
}

func Test_SQLiteSink_WithSeveralBatches_KeepsThemApart(t *testing.T) {
	sink, path := createTestSQLiteSink(t)
	firstBatch := createTestBatch(t, 4)
	secondBatch := createTestBatch(t, 7)

	require.NoError(t, sink.Write(context.Background(), firstBatch))
	require.NoError(t, sink.Write(context.Background(), secondBatch))

	firstRecords, err := sink.findByBatch(context.Background(), firstBatch.ID)
	require.NoError(t, err)
	assert.Len(t, firstRecords, 4)

	secondRecords, err := sink.findByBatch(context.Background(), secondBatch.ID)
	require.NoError(t, err)
	assert.Len(t, secondRecords, 7)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var total int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM visitor_logs").Scan(&total))
	assert.Equal(t, 11, total)
}

func Test_SQLiteSink_WithEmptyBatch_StoresNothing(t *testing.T) {
	sink, _ := createTestSQLiteSink(t)
	batch := visitors_core.NewBatch(nil, visitors_core.Now())

	require.NoError(t, sink.Write(context.Background(), batch))

	records, err := sink.findByBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func Test_SQLiteSink_WhenReopened_KeepsExistingRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visitorLogs.sqlite")
	batch := createTestBatch(t, 5)

	sink, err := NewSQLiteSink(path, logger.GetLogger())
	require.NoError(t, err)
	require.NoError(t, sink.Write(context.Background(), batch))
	require.NoError(t, sink.Close())

	reopened, err := NewSQLiteSink(path, logger.GetLogger())
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	records, err := reopened.findByBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.Equal(t, batch.Records, records)
}
