package visitors_exporting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	visitors_core "visitorlogs/internal/features/visitors/core"
	disk_utils "visitorlogs/internal/util/disk"
)

const (
	// Upper bound of one indented record on disk, used for the free space check.
	estimatedRecordSizeBytes = 512
	minFreeDiskSpaceBytes    = 1 << 20
)

type DiskUsageFunc func(path string) (*disk_utils.Usage, error)

// ExportService writes a batch to the JSON file first and then to every
// additional sink. The JSON file is the primary output: when it fails no
// other sink is attempted.
type ExportService struct {
	fileSink  *JSONFileSink
	sinks     []Sink
	diskUsage DiskUsageFunc
	logger    *slog.Logger
}

func NewExportService(
	fileSink *JSONFileSink,
	diskUsage DiskUsageFunc,
	logger *slog.Logger,
	sinks ...Sink,
) *ExportService {
	return &ExportService{
		fileSink:  fileSink,
		sinks:     sinks,
		diskUsage: diskUsage,
		logger:    logger,
	}
}

func (s *ExportService) AddSink(sink Sink) {
	s.sinks = append(s.sinks, sink)
}

func (s *ExportService) OutputPath() string {
	return s.fileSink.Path()
}

func (s *ExportService) Export(ctx context.Context, batch *visitors_core.Batch) error {
	if err := s.ensureDiskSpace(batch); err != nil {
		return err
	}

	startedAt := time.Now()
	if err := s.fileSink.Write(ctx, batch); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.fileSink.Path(), err)
	}

	s.logger.Info("Visitor logs written",
		slog.String("path", s.fileSink.Path()),
		slog.String("batchId", batch.ID.String()),
		slog.Int("count", batch.Len()),
		slog.Duration("took", time.Since(startedAt)),
	)

	var sinkErrors []error
	for _, sink := range s.sinks {
		if err := sink.Write(ctx, batch); err != nil {
			s.logger.Error("Failed to export batch",
				slog.String("sink", sink.Name()),
				slog.String("batchId", batch.ID.String()),
				slog.String("error", err.Error()),
			)

			sinkErrors = append(sinkErrors, fmt.Errorf("%s sink: %w", sink.Name(), err))
			continue
		}

		s.logger.Info("Batch exported",
			slog.String("sink", sink.Name()),
			slog.String("batchId", batch.ID.String()),
		)
	}

	return errors.Join(sinkErrors...)
}

func (s *ExportService) Close() error {
	var closeErrors []error

	for _, sink := range s.sinks {
		closer, ok := sink.(io.Closer)
		if !ok {
			continue
		}

		if err := closer.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("%s sink: %w", sink.Name(), err))
		}
	}

	return errors.Join(closeErrors...)
}

// ensureDiskSpace fails early when the output file system clearly cannot
// hold the batch. Failing to read usage is not fatal; the write itself
// reports the real error.
func (s *ExportService) ensureDiskSpace(batch *visitors_core.Batch) error {
	if s.diskUsage == nil {
		return nil
	}

	usage, err := s.diskUsage(s.fileSink.Path())
	if err != nil {
		s.logger.Warn("Skipping free disk space check", slog.String("error", err.Error()))
		return nil
	}

	required := uint64(batch.Len())*estimatedRecordSizeBytes + minFreeDiskSpaceBytes
	if usage.FreeBytes < required {
		return &visitors_core.ValidationError{
			Code: visitors_core.ErrorInsufficientDiskSpace,
			Message: fmt.Sprintf(
				"not enough free space in %s: %d bytes free, %d bytes required",
				usage.Path,
				usage.FreeBytes,
				required,
			),
			Field: "output",
		}
	}

	return nil
}
