package visitors_querying

import (
	"sync"

	"visitorlogs/internal/cache"
	"visitorlogs/internal/config"
	visitors_core "visitorlogs/internal/features/visitors/core"
	visitors_exporting "visitorlogs/internal/features/visitors/exporting"
	visitors_generating "visitorlogs/internal/features/visitors/generating"
	cache_utils "visitorlogs/internal/util/cache"
	"visitorlogs/internal/util/logger"
)

const recordsCachePrefix = "visitors:records:"

var (
	visitorQueryService *VisitorQueryService
	visitorsController  *VisitorsController
	diOnce              sync.Once
)

func setUpDependencies() {
	diOnce.Do(func() {
		log := logger.GetLogger()

		visitorQueryService = NewVisitorQueryService(
			visitors_exporting.GetExportService(),
			visitors_generating.GetRecordGenerator(),
			cache_utils.NewCacheUtil[[]visitors_core.LogRecord](cache.GetCache(), recordsCachePrefix),
			config.GetEnv().VisitorLogsCount,
			log,
		)

		visitorsController = &VisitorsController{
			visitorQueryService: visitorQueryService,
			logger:              log,
		}
	})
}

func GetVisitorsController() *VisitorsController {
	setUpDependencies()
	return visitorsController
}
