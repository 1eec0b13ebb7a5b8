package visitors_exporting

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	visitors_core "visitorlogs/internal/features/visitors/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_TableSink_WithBatch_RendersOneRowPerRecord(t *testing.T) {
	var out bytes.Buffer
	sink := NewTableSink(&out)
	batch := createTestBatch(t, 6)

	require.NoError(t, sink.Write(context.Background(), batch))

	rendered := out.String()
	assert.Contains(t, rendered, "COMPANY")
	assert.Contains(t, rendered, "TIME ON PAGE")

	for _, record := range batch.Records {
		assert.Contains(t, rendered, record.Timestamp)
		assert.Contains(t, rendered, record.Company)
		assert.Contains(t, rendered, record.URL)
		assert.Contains(t, rendered, strconv.Itoa(record.TimeOnPage))
	}

	lines := strings.Split(strings.TrimSpace(rendered), "\n")
	// Top border, header, separator, rows, bottom border.
	assert.Len(t, lines, 6+4)
}

func Test_TableSink_WithEmptyBatch_RendersHeaderOnly(t *testing.T) {
	var out bytes.Buffer
	sink := NewTableSink(&out)

	require.NoError(t, sink.Write(context.Background(), visitors_core.NewBatch(nil, visitors_core.Now())))

	assert.Contains(t, out.String(), "TIMESTAMP")
	assert.NotContains(t, out.String(), "Google LLC")
}
