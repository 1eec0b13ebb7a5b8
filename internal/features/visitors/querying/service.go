package visitors_querying

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	visitors_core "visitorlogs/internal/features/visitors/core"
	visitors_exporting "visitorlogs/internal/features/visitors/exporting"
	visitors_generating "visitorlogs/internal/features/visitors/generating"
	cache_utils "visitorlogs/internal/util/cache"
)

// Upper bound for batches generated through the API.
const MaxApiGenerateCount = 10_000

type VisitorQueryService struct {
	exportService   *visitors_exporting.ExportService
	recordGenerator *visitors_generating.RecordGenerator
	recordsCache    *cache_utils.CacheUtil[[]visitors_core.LogRecord]
	defaultCount    int
	logger          *slog.Logger

	generateMu sync.Mutex
}

func NewVisitorQueryService(
	exportService *visitors_exporting.ExportService,
	recordGenerator *visitors_generating.RecordGenerator,
	recordsCache *cache_utils.CacheUtil[[]visitors_core.LogRecord],
	defaultCount int,
	logger *slog.Logger,
) *VisitorQueryService {
	return &VisitorQueryService{
		exportService:   exportService,
		recordGenerator: recordGenerator,
		recordsCache:    recordsCache,
		defaultCount:    defaultCount,
		logger:          logger,
	}
}

// GetVisitors returns the records of the current batch file whose ip and url
// contain the requested substrings. Empty filters match everything.
func (s *VisitorQueryService) GetVisitors(request *GetVisitorsRequestDTO) ([]visitors_core.LogRecord, error) {
	records, err := s.loadRecords()
	if err != nil {
		return nil, err
	}

	if request.IP == "" && request.URL == "" {
		return records, nil
	}

	filtered := make([]visitors_core.LogRecord, 0, len(records))
	for _, record := range records {
		if request.IP != "" && !strings.Contains(record.IP, request.IP) {
			continue
		}

		if request.URL != "" && !strings.Contains(record.URL, request.URL) {
			continue
		}

		filtered = append(filtered, record)
	}

	return filtered, nil
}

// GenerateVisitors replaces the batch file with a freshly generated batch.
func (s *VisitorQueryService) GenerateVisitors(
	ctx context.Context,
	request *GenerateVisitorsRequestDTO,
) (*GenerateVisitorsResponseDTO, error) {
	count := min(s.defaultCount, MaxApiGenerateCount)
	if request.Count != nil {
		count = *request.Count
	}

	if count < 0 || count > MaxApiGenerateCount {
		return nil, &visitors_core.ValidationError{
			Code:    visitors_core.ErrorInvalidCount,
			Message: fmt.Sprintf("count must be between 0 and %d", MaxApiGenerateCount),
			Field:   "count",
		}
	}

	s.generateMu.Lock()
	defer s.generateMu.Unlock()

	batch, err := s.recordGenerator.GenerateBatch(ctx, count)
	if err != nil {
		return nil, err
	}

	if err := s.exportService.Export(ctx, batch); err != nil {
		return nil, err
	}

	return &GenerateVisitorsResponseDTO{
		Count:       batch.Len(),
		BatchID:     batch.ID,
		Path:        s.exportService.OutputPath(),
		GeneratedAt: batch.GeneratedAt,
	}, nil
}

// loadRecords reads the batch file, going through the cache when one is
// configured. The cache key includes the file's modification time and
// size, so a rewritten file is never served stale.
func (s *VisitorQueryService) loadRecords() ([]visitors_core.LogRecord, error) {
	path := s.exportService.OutputPath()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cacheKey := s.cacheKey(path, info)
	if cached := s.recordsCache.Get(cacheKey); cached != nil {
		return *cached, nil
	}

	records, err := visitors_exporting.LoadRecords(path)
	if err != nil {
		return nil, err
	}

	s.recordsCache.Set(cacheKey, &records)

	return records, nil
}

func (s *VisitorQueryService) cacheKey(path string, info os.FileInfo) string {
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		absolutePath = path
	}

	return fmt.Sprintf("%s:%d:%d", absolutePath, info.ModTime().UnixNano(), info.Size())
}
