package visitors_exporting

import (
	"context"
	"io"
	"strconv"

	visitors_core "visitorlogs/internal/features/visitors/core"

	"github.com/olekukonko/tablewriter"
)

// TableSink renders a batch as a plain-text table, used by -print.
type TableSink struct {
	out io.Writer
}

func NewTableSink(out io.Writer) *TableSink {
	return &TableSink{out: out}
}

func (s *TableSink) Name() string {
	return "table"
}

func (s *TableSink) Write(_ context.Context, batch *visitors_core.Batch) error {
	table := tablewriter.NewWriter(s.out)
	table.SetHeader([]string{
		"Timestamp", "IP", "Company", "URL", "Source", "Time on page", "Pages", "Visits",
	})
	table.SetAutoWrapText(false)
	table.SetRowLine(false)

	for _, record := range batch.Records {
		table.Append([]string{
			record.Timestamp,
			record.IP,
			record.Company,
			record.URL,
			string(record.TrafficSource),
			strconv.Itoa(record.TimeOnPage),
			strconv.Itoa(record.PagesViewed),
			strconv.Itoa(record.VisitCount),
		})
	}

	table.Render()

	return nil
}
