package visitors_generating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"visitorlogs/internal/config"
	visitors_core "visitorlogs/internal/features/visitors/core"

	"golang.org/x/sync/errgroup"
)

const (
	// Generation checks for cancellation once per this many records.
	cancellationCheckInterval = 1_000

	// Below this many records per worker the parallel path is not worth it.
	minRecordsPerWorker = 1_000
)

var ErrGenerationInterrupted = errors.New("generation interrupted by shutdown signal")

type RecordGenerator struct {
	seed    int64
	workers int
	clock   visitors_core.Clock
	logger  *slog.Logger

	runs atomic.Int64
}

// NewRecordGenerator creates a generator. A zero seed draws a fresh seed
// for every run; any other seed makes runs reproducible for a fixed clock
// and worker count.
func NewRecordGenerator(
	seed int64,
	workers int,
	clock visitors_core.Clock,
	logger *slog.Logger,
) *RecordGenerator {
	if clock == nil {
		clock = visitors_core.Now
	}

	return &RecordGenerator{
		seed:    seed,
		workers: max(workers, 1),
		clock:   clock,
		logger:  logger,
	}
}

// Generate returns exactly count independently sampled records in
// generation order. A count of zero or less yields an empty batch.
func (g *RecordGenerator) Generate(count int) []visitors_core.LogRecord {
	if count <= 0 {
		return []visitors_core.LogRecord{}
	}

	records := make([]visitors_core.LogRecord, count)
	sampleInto(records, newRecordSampler(g.nextRunSeed(), g.clock))

	return records
}

// GenerateBatch generates count records, spreading the work over the
// configured workers when the batch is large enough, and wraps them in a
// Batch with a fresh ID.
func (g *RecordGenerator) GenerateBatch(ctx context.Context, count int) (*visitors_core.Batch, error) {
	if count < 0 {
		return nil, &visitors_core.ValidationError{
			Code:    visitors_core.ErrorInvalidCount,
			Message: fmt.Sprintf("count must not be negative, got %d", count),
			Field:   "count",
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	startedAt := time.Now()
	generatedAt := g.clock()
	seed := g.nextRunSeed()

	workers := g.effectiveWorkers(count)

	var records []visitors_core.LogRecord
	var err error
	if workers > 1 {
		records, err = g.generateParallel(ctx, count, seed, workers)
	} else {
		records = make([]visitors_core.LogRecord, count)
		err = g.fillRange(ctx, records, 0, count, newRecordSampler(seed, g.clock))
	}

	if err != nil {
		return nil, err
	}

	batch := visitors_core.NewBatch(records, generatedAt)

	g.logger.Info("Generated visitor log batch",
		slog.String("batchId", batch.ID.String()),
		slog.Int("count", batch.Len()),
		slog.Int("workers", workers),
		slog.Duration("took", time.Since(startedAt)))

	return batch, nil
}

func (g *RecordGenerator) generateParallel(
	ctx context.Context,
	count int,
	seed int64,
	workers int,
) ([]visitors_core.LogRecord, error) {
	records := make([]visitors_core.LogRecord, count)

	// Worker seeds derive from the run seed so a seeded run stays reproducible.
	seedSource := rand.New(rand.NewSource(seed))
	chunkSize := (count + workers - 1) / workers

	group, groupCtx := errgroup.WithContext(ctx)
	for worker := range workers {
		start := worker * chunkSize
		if start >= count {
			break
		}
		end := min(start+chunkSize, count)

		sampler := newRecordSampler(seedSource.Int63(), g.clock)
		group.Go(func() error {
			return g.fillRange(groupCtx, records, start, end, sampler)
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}

// fillRange samples records[start:end]. Workers write disjoint ranges.
func (g *RecordGenerator) fillRange(
	ctx context.Context,
	records []visitors_core.LogRecord,
	start, end int,
	sampler *recordSampler,
) error {
	for chunkStart := start; chunkStart < end; chunkStart += cancellationCheckInterval {
		if err := ctx.Err(); err != nil {
			return err
		}

		if config.IsShouldShutdown() {
			return ErrGenerationInterrupted
		}

		chunkEnd := min(chunkStart+cancellationCheckInterval, end)
		sampleInto(records[chunkStart:chunkEnd], sampler)
	}

	return nil
}

func sampleInto(records []visitors_core.LogRecord, sampler *recordSampler) {
	for i := range records {
		records[i] = sampler.sample()
	}
}

func (g *RecordGenerator) effectiveWorkers(count int) int {
	if g.workers <= 1 {
		return 1
	}

	return max(min(g.workers, count/minRecordsPerWorker), 1)
}

func (g *RecordGenerator) nextRunSeed() int64 {
	if g.seed != 0 {
		return g.seed
	}

	return time.Now().UnixNano() + g.runs.Add(1)
}
