package visitors_exporting

import (
	"context"

	visitors_core "visitorlogs/internal/features/visitors/core"
)

// Sink receives a finished batch. Sinks that hold connections also
// implement io.Closer and are closed by the ExportService.
type Sink interface {
	Name() string
	Write(ctx context.Context, batch *visitors_core.Batch) error
}
