package visitors_exporting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	visitors_core "visitorlogs/internal/features/visitors/core"
)

const outputFileMode = 0o644

// JSONFileSink writes the records of a batch as an indented JSON array.
// The file is replaced atomically: readers see either the previous batch
// or the complete new one.
type JSONFileSink struct {
	path   string
	logger *slog.Logger
}

func NewJSONFileSink(path string, logger *slog.Logger) *JSONFileSink {
	return &JSONFileSink{
		path:   path,
		logger: logger,
	}
}

func (s *JSONFileSink) Name() string {
	return "json-file"
}

func (s *JSONFileSink) Path() string {
	return s.path
}

func (s *JSONFileSink) Write(ctx context.Context, batch *visitors_core.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	records := batch.Records
	if records == nil {
		records = []visitors_core.LogRecord{}
	}

	tempFile, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &visitors_core.ValidationError{
			Code:    visitors_core.ErrorOutputNotWritable,
			Message: fmt.Sprintf("cannot create output file next to %s: %v", s.path, err),
			Field:   "output",
		}
	}

	tempPath := tempFile.Name()
	isCommitted := false
	defer func() {
		if isCommitted {
			return
		}

		_ = tempFile.Close()
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("Failed to remove temporary output file",
				slog.String("path", tempPath),
				slog.String("error", err.Error()),
			)
		}
	}()

	err = writeCompressed(tempFile, compressionForPath(s.path), func(w io.Writer) error {
		return encodeRecords(w, records)
	})
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	if err := os.Chmod(tempPath, outputFileMode); err != nil {
		return fmt.Errorf("failed to set output file mode: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		return fmt.Errorf("failed to move output file into place: %w", err)
	}

	isCommitted = true

	return nil
}

// encodeRecords writes records as a two-space indented array with no
// trailing newline.
func encodeRecords(w io.Writer, records []visitors_core.LogRecord) error {
	trimmer := &trailingNewlineTrimmer{w: w}

	encoder := json.NewEncoder(trimmer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	return encoder.Encode(records)
}

// trailingNewlineTrimmer holds back a final '\n' until more data arrives,
// so the newline json.Encoder appends after a value is never written.
type trailingNewlineTrimmer struct {
	w                io.Writer
	isNewlinePending bool
}

func (t *trailingNewlineTrimmer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	if t.isNewlinePending {
		if _, err := t.w.Write([]byte{'\n'}); err != nil {
			return 0, err
		}
		t.isNewlinePending = false
	}

	body := p
	if p[len(p)-1] == '\n' {
		body = p[:len(p)-1]
		t.isNewlinePending = true
	}

	if _, err := t.w.Write(body); err != nil {
		return 0, err
	}

	return len(p), nil
}

// LoadRecords reads back a batch file written by JSONFileSink.
func LoadRecords(path string) ([]visitors_core.LogRecord, error) {
	content, err := ReadBatchFile(path)
	if err != nil {
		return nil, err
	}

	var records []visitors_core.LogRecord
	if err := json.Unmarshal(content, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if records == nil {
		records = []visitors_core.LogRecord{}
	}

	return records, nil
}
