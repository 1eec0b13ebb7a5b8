package visitors_exporting

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

type compression string

const (
	compressionNone compression = ""
	compressionGzip compression = "gzip"
	compressionZstd compression = "zstd"
)

func compressionForPath(path string) compression {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return compressionGzip
	case strings.HasSuffix(path, ".zst"):
		return compressionZstd
	default:
		return compressionNone
	}
}

// writeCompressed runs encode against w, wrapped in the given compressor.
// The compressor is flushed before returning.
func writeCompressed(w io.Writer, c compression, encode func(io.Writer) error) error {
	switch c {
	case compressionGzip:
		gzipWriter := gzip.NewWriter(w)
		if err := encode(gzipWriter); err != nil {
			_ = gzipWriter.Close()
			return err
		}

		return gzipWriter.Close()
	case compressionZstd:
		zstdWriter, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("failed to create zstd writer: %w", err)
		}

		if err := encode(zstdWriter); err != nil {
			_ = zstdWriter.Close()
			return err
		}

		return zstdWriter.Close()
	default:
		return encode(w)
	}
}

// ReadBatchFile returns the uncompressed content of a batch file written by
// JSONFileSink.
func ReadBatchFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	switch compressionForPath(path) {
	case compressionGzip:
		gzipReader, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
		}
		defer func() { _ = gzipReader.Close() }()

		return io.ReadAll(gzipReader)
	case compressionZstd:
		zstdReader, err := zstd.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("failed to open zstd stream %s: %w", path, err)
		}
		defer zstdReader.Close()

		return io.ReadAll(zstdReader)
	default:
		return io.ReadAll(file)
	}
}
