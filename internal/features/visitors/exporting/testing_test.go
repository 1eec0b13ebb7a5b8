package visitors_exporting

import (
	"context"
	"errors"
	"sync"
	"testing"

	visitors_core "visitorlogs/internal/features/visitors/core"
	visitors_generating "visitorlogs/internal/features/visitors/generating"
	"visitorlogs/internal/util/logger"

	"github.com/stretchr/testify/require"
)

func createTestBatch(t *testing.T, count int) *visitors_core.Batch {
	t.Helper()

	generator := visitors_generating.NewRecordGenerator(42, 1, nil, logger.GetLogger())
	batch, err := generator.GenerateBatch(context.Background(), count)
	require.NoError(t, err)

	return batch
}

type recordingSink struct {
	name string
	err  error

	mu       sync.Mutex
	batches  []*visitors_core.Batch
	isClosed bool
}

func (s *recordingSink) Name() string {
	return s.name
}

func (s *recordingSink) Write(_ context.Context, batch *visitors_core.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batches = append(s.batches, batch)

	return s.err
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isClosed = true

	return nil
}

var errSinkUnavailable = errors.New("sink unavailable")
