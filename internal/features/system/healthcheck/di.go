package system_healthcheck

import (
	"sync"

	"visitorlogs/internal/cache"
	"visitorlogs/internal/config"
	cache_utils "visitorlogs/internal/util/cache"
	disk_utils "visitorlogs/internal/util/disk"
	"visitorlogs/internal/util/logger"
)

var (
	healthcheckController *HealthcheckController
	healthcheckOnce       sync.Once
)

func GetHealthcheckController() *HealthcheckController {
	healthcheckOnce.Do(func() {
		healthcheckController = &HealthcheckController{
			&HealthcheckService{
				outputPath: config.GetEnv().VisitorLogsOutputPath,
				diskUsage:  disk_utils.GetUsage,
				cacheCheck: func() error {
					return cache_utils.TestCacheConnection(cache.GetCache())
				},
				isCacheUsed: cache.IsEnabled(),
				logger:      logger.GetLogger(),
			},
		}
	})

	return healthcheckController
}
