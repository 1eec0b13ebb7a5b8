package visitors_exporting

import (
	"os"
	"sync"

	"visitorlogs/internal/config"
	"visitorlogs/internal/storage"
	disk_utils "visitorlogs/internal/util/disk"
	"visitorlogs/internal/util/logger"
)

var (
	exportService     *ExportService
	exportServiceOnce sync.Once
)

// GetExportService builds the service from the current configuration on
// first use, so command line overrides applied before that are honoured.
func GetExportService() *ExportService {
	exportServiceOnce.Do(func() {
		env := config.GetEnv()
		log := logger.GetLogger()

		exportService = NewExportService(
			NewJSONFileSink(env.VisitorLogsOutputPath, log),
			disk_utils.GetUsage,
			log,
		)

		if env.VisitorLogsSqlitePath != "" {
			sqliteSink, err := NewSQLiteSink(env.VisitorLogsSqlitePath, log)
			if err != nil {
				log.Error("Failed to open SQLite sink", "error", err)
				os.Exit(1)
			}

			exportService.AddSink(sqliteSink)
		}

		if env.DatabaseDsn != "" {
			exportService.AddSink(NewPostgresSink(storage.GetDb(), log))
		}

		if len(env.KafkaBrokers) > 0 {
			exportService.AddSink(NewKafkaSink(env.KafkaBrokers, env.KafkaTopic, log))
		}
	})

	return exportService
}
