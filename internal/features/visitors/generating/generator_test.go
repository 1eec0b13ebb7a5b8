package visitors_generating

import (
	"context"
	"net/url"
	"testing"
	"time"

	visitors_core "visitorlogs/internal/features/visitors/core"
	"visitorlogs/internal/util/logger"
	time_parser "visitorlogs/internal/util/time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 12, 30, 45, 250000000, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

func createGenerator(seed int64, workers int, clock visitors_core.Clock) *RecordGenerator {
	return NewRecordGenerator(seed, workers, clock, logger.GetLogger())
}

func Test_Generate_WithCount_ReturnsExactlyCountRecords(t *testing.T) {
	generator := createGenerator(0, 1, nil)

	for _, count := range []int{1, 7, 100} {
		records := generator.Generate(count)
		assert.Len(t, records, count)
	}
}

func Test_Generate_WithZeroOrNegativeCount_ReturnsEmptyBatch(t *testing.T) {
	generator := createGenerator(0, 1, nil)

	for _, count := range []int{0, -1, -100} {
		records := generator.Generate(count)

		assert.NotNil(t, records)
		assert.Empty(t, records)
	}
}

func Test_Generate_EveryRecord_SatisfiesFieldInvariants(t *testing.T) {
	generator := createGenerator(0, 1, nil)

	before := time.Now().UTC()
	records := generator.Generate(500)
	after := time.Now().UTC()

	for i, record := range records {
		assertRecordValid(t, i, record, before, after)
	}
}

func Test_Generate_WithFixedClock_TimestampsStayInsideOffsetWindow(t *testing.T) {
	generator := createGenerator(7, 1, fixedClock)

	records := generator.Generate(1_000)

	earliest := fixedNow.Add(-(30*24*time.Hour + 1440*time.Minute))
	for _, record := range records {
		timestamp, err := time_parser.ParseTimestamp(record.Timestamp)
		require.NoError(t, err)

		assert.False(t, timestamp.Before(earliest), "timestamp %s before window", record.Timestamp)
		assert.False(t, timestamp.After(fixedNow), "timestamp %s after now", record.Timestamp)

		// Offsets are whole minutes, so the sub-minute part of "now" survives.
		assert.Equal(t, fixedNow.Second(), timestamp.Second())
		assert.Equal(t, fixedNow.Nanosecond(), timestamp.Nanosecond())
	}
}

func Test_Generate_WithSameSeedAndClock_IsDeterministic(t *testing.T) {
	first := createGenerator(42, 1, fixedClock).Generate(100)
	second := createGenerator(42, 1, fixedClock).Generate(100)

	assert.Equal(t, first, second)
}

func Test_Generate_AndSingleWorkerBatch_WithSameSeed_ProduceSameRecords(t *testing.T) {
	generator := createGenerator(7, 1, fixedClock)

	// Spans several cancellation check intervals, including a partial one.
	count := 2*cancellationCheckInterval + 37

	records := generator.Generate(count)
	batch, err := generator.GenerateBatch(context.Background(), count)
	require.NoError(t, err)

	assert.Equal(t, records, batch.Records)
}

func Test_Generate_CalledTwiceWithoutSeed_ProducesDifferentBatches(t *testing.T) {
	generator := createGenerator(0, 1, nil)

	first := generator.Generate(100)
	second := generator.Generate(100)

	assert.NotEqual(t, first, second)
}

func Test_Generate_WithLargeBatch_CoversEveryReferenceValue(t *testing.T) {
	generator := createGenerator(0, 1, nil)

	records := generator.Generate(5_000)

	companies := make(map[string]bool)
	paths := make(map[string]bool)
	userAgents := make(map[string]bool)
	sources := make(map[visitors_core.TrafficSource]bool)
	for _, record := range records {
		companies[record.Company] = true
		paths[record.URL] = true
		userAgents[record.UserAgent] = true
		sources[record.TrafficSource] = true
	}

	assert.Len(t, companies, len(visitors_core.Organizations))
	assert.Len(t, paths, len(visitors_core.Paths))
	assert.Len(t, userAgents, len(visitors_core.UserAgents))
	assert.Len(t, sources, len(visitors_core.TrafficSources))
}

func Test_GenerateBatch_WithSingleWorker_ReturnsBatchWithID(t *testing.T) {
	generator := createGenerator(0, 1, fixedClock)

	batch, err := generator.GenerateBatch(context.Background(), 100)

	require.NoError(t, err)
	assert.Equal(t, 100, batch.Len())
	assert.NotEmpty(t, batch.ID.String())
	assert.Equal(t, fixedNow, batch.GeneratedAt)
}

func Test_GenerateBatch_WithZeroCount_ReturnsEmptyBatch(t *testing.T) {
	generator := createGenerator(0, 4, nil)

	batch, err := generator.GenerateBatch(context.Background(), 0)

	require.NoError(t, err)
	assert.NotNil(t, batch.Records)
	assert.Equal(t, 0, batch.Len())
}

func Test_GenerateBatch_WithNegativeCount_ReturnsValidationError(t *testing.T) {
	generator := createGenerator(0, 1, nil)

	batch, err := generator.GenerateBatch(context.Background(), -5)

	assert.Nil(t, batch)
	validationErr, ok := err.(*visitors_core.ValidationError)
	require.True(t, ok, "expected ValidationError, got %T", err)
	assert.Equal(t, visitors_core.ErrorInvalidCount, validationErr.Code)
}

func Test_GenerateBatch_WithManyWorkers_KeepsCountAndInvariants(t *testing.T) {
	generator := createGenerator(0, 4, nil)

	before := time.Now().UTC()
	batch, err := generator.GenerateBatch(context.Background(), 4_321)
	after := time.Now().UTC()

	require.NoError(t, err)
	assert.Equal(t, 4_321, batch.Len())
	for i, record := range batch.Records {
		assertRecordValid(t, i, record, before, after)
	}
}

func Test_GenerateBatch_WithSeedAndWorkers_IsDeterministic(t *testing.T) {
	first, err := createGenerator(99, 3, fixedClock).GenerateBatch(context.Background(), 3_500)
	require.NoError(t, err)

	second, err := createGenerator(99, 3, fixedClock).GenerateBatch(context.Background(), 3_500)
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
	assert.NotEqual(t, first.ID, second.ID)
}

func Test_GenerateBatch_WithCancelledContext_ReturnsError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		generator := createGenerator(0, workers, nil)

		batch, err := generator.GenerateBatch(ctx, 10_000)

		assert.Nil(t, batch)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func Test_EffectiveWorkers_ForSmallBatches_FallsBackToSingleWorker(t *testing.T) {
	tests := []struct {
		name     string
		workers  int
		count    int
		expected int
	}{
		{"single worker configured", 1, 100_000, 1},
		{"tiny batch", 8, 100, 1},
		{"just enough for two", 8, 2_000, 2},
		{"capped by configuration", 4, 100_000, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generator := createGenerator(0, tt.workers, nil)
			assert.Equal(t, tt.expected, generator.effectiveWorkers(tt.count))
		})
	}
}

func assertRecordValid(t *testing.T, index int, record visitors_core.LogRecord, before, after time.Time) {
	t.Helper()

	assert.True(t, record.MatchesOrganization(), "record %d has recombined organization fields", index)
	assert.True(t, visitors_core.IsKnownPath(record.URL), "record %d has unknown url %s", index, record.URL)
	assert.True(t, visitors_core.IsKnownUserAgent(record.UserAgent), "record %d has unknown user agent", index)
	assert.True(t, record.TrafficSource.IsValid(), "record %d has unknown traffic source", index)

	assert.GreaterOrEqual(t, record.TimeOnPage, 30)
	assert.LessOrEqual(t, record.TimeOnPage, 600)
	assert.GreaterOrEqual(t, record.PagesViewed, 1)
	assert.LessOrEqual(t, record.PagesViewed, 10)
	assert.GreaterOrEqual(t, record.VisitCount, 1)
	assert.LessOrEqual(t, record.VisitCount, 5)

	timestamp, err := time_parser.ParseTimestamp(record.Timestamp)
	assert.NoError(t, err, "record %d has unparseable timestamp %s", index, record.Timestamp)
	assert.Equal(t, byte('Z'), record.Timestamp[len(record.Timestamp)-1])
	assert.False(t, timestamp.Before(before.Add(-31*24*time.Hour).Add(-time.Second)))
	assert.False(t, timestamp.After(after.Add(time.Second)))

	referrer, err := url.Parse(record.Referrer)
	assert.NoError(t, err)
	assert.NotEmpty(t, referrer.Scheme, "record %d referrer %s has no scheme", index, record.Referrer)
	assert.NotEmpty(t, referrer.Host, "record %d referrer %s has no host", index, record.Referrer)
}
