package visitors_exporting

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	visitors_core "visitorlogs/internal/features/visitors/core"
	"visitorlogs/internal/util/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_JSONFileSink_WithBatch_WritesIndentedArrayThatRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visitorLogs.json")
	sink := NewJSONFileSink(path, logger.GetLogger())
	batch := createTestBatch(t, 25)

	require.NoError(t, sink.Write(context.Background(), batch))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "[\n  {\n    \"ip\": "))

	records, err := LoadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, batch.Records, records)
}

func Test_JSONFileSink_WithBatch_EndsWithClosingBracketAndNoNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visitorLogs.json")
	sink := NewJSONFileSink(path, logger.GetLogger())

	require.NoError(t, sink.Write(context.Background(), createTestBatch(t, 4)))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(content), "\n  }\n]"))
	assert.False(t, strings.HasSuffix(string(content), "\n"))
}

func Test_TrailingNewlineTrimmer_WithSplitWrites_KeepsInnerNewlines(t *testing.T) {
	var out strings.Builder
	trimmer := &trailingNewlineTrimmer{w: &out}

	for _, chunk := range []string{"[\n", "  1\n", "]\n"} {
		written, err := trimmer.Write([]byte(chunk))
		require.NoError(t, err)
		assert.Equal(t, len(chunk), written)
	}

	assert.Equal(t, "[\n  1\n]", out.String())
}

func Test_JSONFileSink_WithBatch_KeepsKeyOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visitorLogs.json")
	sink := NewJSONFileSink(path, logger.GetLogger())

	require.NoError(t, sink.Write(context.Background(), createTestBatch(t, 1)))

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	keys := []string{
		"ip", "company", "industry", "location", "url", "timestamp",
		"userAgent", "timeOnPage", "pagesViewed", "referrer", "trafficSource", "visitCount",
	}

	lastIndex := -1
	for _, key := range keys {
		index := strings.Index(string(content), `"`+key+`":`)
		require.Greater(t, index, lastIndex, "key %s out of order", key)
		lastIndex = index
	}
}

func Test_JSONFileSink_WithEmptyBatch_WritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visitorLogs.json")
	sink := NewJSONFileSink(path, logger.GetLogger())

	err := sink.Write(context.Background(), visitors_core.NewBatch(nil, visitors_core.Now()))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(content))

	records, err := LoadRecords(path)
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func Test_JSONFileSink_WithExistingFile_ReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visitorLogs.json")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("stale ", 10_000)), 0o644))
	sink := NewJSONFileSink(path, logger.GetLogger())

	batch := createTestBatch(t, 3)
	require.NoError(t, sink.Write(context.Background(), batch))

	records, err := LoadRecords(path)
	require.NoError(t, err)
	assert.Equal(t, batch.Records, records)
}

func Test_JSONFileSink_WithCompressedSuffix_RoundTrips(t *testing.T) {
	testCases := []struct {
		name     string
		fileName string
		magic    []byte
	}{
		{name: "gzip", fileName: "visitorLogs.json.gz", magic: []byte{0x1f, 0x8b}},
		{name: "zstd", fileName: "visitorLogs.json.zst", magic: []byte{0x28, 0xb5, 0x2f, 0xfd}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tc.fileName)
			sink := NewJSONFileSink(path, logger.GetLogger())
			batch := createTestBatch(t, 40)

			require.NoError(t, sink.Write(context.Background(), batch))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tc.magic, raw[:len(tc.magic)])

			content, err := ReadBatchFile(path)
			require.NoError(t, err)
			assert.True(t, json.Valid(content))

			records, err := LoadRecords(path)
			require.NoError(t, err)
			assert.Equal(t, batch.Records, records)
		})
	}
}

func Test_JSONFileSink_WhenDirectoryMissing_ReturnsOutputNotWritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "visitorLogs.json")
	sink := NewJSONFileSink(path, logger.GetLogger())

	err := sink.Write(context.Background(), createTestBatch(t, 2))

	require.Error(t, err)
	var validationErr *visitors_core.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, visitors_core.ErrorOutputNotWritable, validationErr.Code)
	assert.NoFileExists(t, path)
}

func Test_JSONFileSink_WhenRenameFails_LeavesNoTemporaryFile(t *testing.T) {
	dir := t.TempDir()
	// A non-empty directory at the target path makes the final rename fail.
	path := filepath.Join(dir, "visitorLogs.json")
	require.NoError(t, os.MkdirAll(filepath.Join(path, "occupied"), 0o755))
	sink := NewJSONFileSink(path, logger.GetLogger())

	err := sink.Write(context.Background(), createTestBatch(t, 2))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "visitorLogs.json", entries[0].Name())
	assert.True(t, entries[0].IsDir())
}

func Test_JSONFileSink_AfterSuccessfulWrite_LeavesOnlyOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "visitorLogs.json")
	sink := NewJSONFileSink(path, logger.GetLogger())

	require.NoError(t, sink.Write(context.Background(), createTestBatch(t, 5)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "visitorLogs.json", entries[0].Name())

	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(outputFileMode), info.Mode().Perm())
}

func Test_JSONFileSink_WithCancelledContext_WritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visitorLogs.json")
	sink := NewJSONFileSink(path, logger.GetLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sink.Write(ctx, createTestBatch(t, 2))

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, path)
}

func Test_LoadRecords_WhenFileMissing_ReturnsNotExist(t *testing.T) {
	_, err := LoadRecords(filepath.Join(t.TempDir(), "nope.json"))

	assert.ErrorIs(t, err, os.ErrNotExist)
}
