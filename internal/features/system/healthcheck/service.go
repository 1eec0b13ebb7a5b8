package system_healthcheck

import (
	"fmt"
	"log/slog"
	"os"

	disk_utils "visitorlogs/internal/util/disk"
)

type HealthcheckService struct {
	outputPath  string
	diskUsage   func(path string) (*disk_utils.Usage, error)
	cacheCheck  func() error
	isCacheUsed bool
	logger      *slog.Logger
}

// IsAvailable reports the state of the output directory and, when
// configured, the cache. An unreadable output file system is an error;
// an unreachable cache only degrades the status.
func (s *HealthcheckService) IsAvailable() (*HealthcheckResponseDTO, error) {
	usage, err := s.diskUsage(s.outputPath)
	if err != nil {
		return nil, fmt.Errorf("disk check failed: %w", err)
	}

	response := &HealthcheckResponseDTO{
		Status:     StatusOK,
		OutputPath: s.outputPath,
		Disk:       usage,
		Cache:      CacheStatusDisabled,
	}

	if info, err := os.Stat(s.outputPath); err == nil && !info.IsDir() {
		response.IsOutputFile = true
	}

	if s.isCacheUsed {
		if err := s.cacheCheck(); err != nil {
			s.logger.Warn("Cache check failed", slog.String("error", err.Error()))
			response.Status = StatusDegraded
			response.Cache = CacheStatusUnavailable
		} else {
			response.Cache = CacheStatusAvailable
		}
	}

	return response, nil
}
