package visitors_generating

import (
	"sync"

	"visitorlogs/internal/config"
	visitors_core "visitorlogs/internal/features/visitors/core"
	"visitorlogs/internal/util/logger"
)

var (
	recordGenerator     *RecordGenerator
	recordGeneratorOnce sync.Once
)

func GetRecordGenerator() *RecordGenerator {
	recordGeneratorOnce.Do(func() {
		env := config.GetEnv()

		recordGenerator = NewRecordGenerator(
			env.VisitorLogsSeed,
			env.VisitorLogsWorkers,
			visitors_core.Now,
			logger.GetLogger(),
		)
	})

	return recordGenerator
}
