package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"visitorlogs/internal/cache"
	"visitorlogs/internal/config"
	system_healthcheck "visitorlogs/internal/features/system/healthcheck"
	visitors_exporting "visitorlogs/internal/features/visitors/exporting"
	visitors_generating "visitorlogs/internal/features/visitors/generating"
	visitors_querying "visitorlogs/internal/features/visitors/querying"
	visitors_validation "visitorlogs/internal/features/visitors/validation"
	cache_utils "visitorlogs/internal/util/cache"
	env_utils "visitorlogs/internal/util/env"
	"visitorlogs/internal/util/logger"
	"visitorlogs/internal/util/rate_limit"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

type commandLineFlags struct {
	count      int
	outputPath string
	seed       int64
	workers    int
	print      bool
	verifyPath string
	serve      bool

	setFlags map[string]bool
}

func main() {
	log := logger.GetLogger()

	flags := parseFlags()
	if err := applyFlagOverrides(flags); err != nil {
		log.Error("Invalid command line arguments", "error", err)
		os.Exit(1)
	}

	config.StartListeningForShutdownSignal()

	switch {
	case flags.verifyPath != "":
		runVerification(log, flags)
	case flags.serve:
		runServer(log)
	default:
		runGeneration(log, flags.print)
	}
}

func parseFlags() *commandLineFlags {
	flags := &commandLineFlags{setFlags: map[string]bool{}}

	flag.IntVar(&flags.count, "count", 0, "Number of visitor logs to generate (overrides VISITOR_LOGS_COUNT)")
	flag.StringVar(&flags.outputPath, "output", "", "Output file, .gz or .zst compresses (overrides VISITOR_LOGS_OUTPUT_PATH)")
	flag.Int64Var(&flags.seed, "seed", 0, "Seed for reproducible output, 0 seeds from the clock (overrides VISITOR_LOGS_SEED)")
	flag.IntVar(&flags.workers, "workers", 0, "Parallel generation workers (overrides VISITOR_LOGS_WORKERS)")
	flag.BoolVar(&flags.print, "print", false, "Also print the generated batch as a table")
	flag.StringVar(&flags.verifyPath, "verify", "", "Verify a written batch file instead of generating")
	flag.BoolVar(&flags.serve, "serve", false, "Serve the visitors API instead of generating once")

	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		flags.setFlags[f.Name] = true
	})

	return flags
}

func applyFlagOverrides(flags *commandLineFlags) error {
	if len(flags.setFlags) == 0 {
		return nil
	}

	return config.Override(func(env *config.EnvVariables) {
		if flags.setFlags["count"] {
			env.VisitorLogsCount = flags.count
		}
		if flags.setFlags["output"] {
			env.VisitorLogsOutputPath = flags.outputPath
		}
		if flags.setFlags["seed"] {
			env.VisitorLogsSeed = flags.seed
		}
		if flags.setFlags["workers"] {
			env.VisitorLogsWorkers = flags.workers
		}
	})
}

func runGeneration(log *slog.Logger, printTable bool) {
	exportService := visitors_exporting.GetExportService()
	if printTable {
		exportService.AddSink(visitors_exporting.NewTableSink(os.Stdout))
	}

	err := generateAndExport(context.Background(), config.GetEnv().VisitorLogsCount)
	closeExportService(log, exportService)

	if err != nil {
		log.Error("Failed to generate visitor logs", "error", err)
		os.Exit(1)
	}
}

func generateAndExport(ctx context.Context, count int) error {
	batch, err := visitors_generating.GetRecordGenerator().GenerateBatch(ctx, count)
	if err != nil {
		return err
	}

	return visitors_exporting.GetExportService().Export(ctx, batch)
}

func closeExportService(log *slog.Logger, exportService *visitors_exporting.ExportService) {
	if err := exportService.Close(); err != nil {
		log.Warn("Failed to close export sinks", "error", err)
	}
}

func runVerification(log *slog.Logger, flags *commandLineFlags) {
	expectedCount := visitors_validation.AnyCount
	if flags.setFlags["count"] {
		expectedCount = flags.count
	}

	report, err := visitors_validation.GetBatchValidator().ValidateFile(flags.verifyPath, expectedCount)
	if err != nil {
		log.Error("Failed to verify visitor logs", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d records, %d violations\n", flags.verifyPath, report.Count, report.ViolationCount)
	for _, violation := range report.Violations {
		fmt.Printf("  record %d: %s %s: %s\n", violation.Index, violation.Code, violation.Field, violation.Message)
	}

	if !report.IsValid() {
		os.Exit(1)
	}
}

func runServer(log *slog.Logger) {
	ensureInitialBatch(log)
	testCacheConnection(log)

	gin.SetMode(gin.ReleaseMode)
	ginApp := gin.Default()

	ginApp.Use(gzip.Gzip(gzip.DefaultCompression))

	enableCors(ginApp)
	setUpRoutes(ginApp)

	startServerWithGracefulShutdown(log, ginApp)

	closeExportService(log, visitors_exporting.GetExportService())
}

// ensureInitialBatch writes a first batch when the API starts without one,
// so GET /visitors has data to serve.
func ensureInitialBatch(log *slog.Logger) {
	outputPath := visitors_exporting.GetExportService().OutputPath()
	if _, err := os.Stat(outputPath); err == nil {
		return
	}

	log.Info("No visitor logs found, generating initial batch", "path", outputPath)

	if err := generateAndExport(context.Background(), config.GetEnv().VisitorLogsCount); err != nil {
		log.Error("Failed to generate initial visitor logs", "error", err)
		os.Exit(1)
	}
}

func testCacheConnection(log *slog.Logger) {
	if !cache.IsEnabled() {
		log.Info("Valkey is not configured, visitor logs are read from disk on every request")
		return
	}

	if err := cache_utils.TestCacheConnection(cache.GetCache()); err != nil {
		log.Error("Cache connection test failed", "error", err)
		os.Exit(1)
	}

	log.Info("Cache connection test successful")
}

func startServerWithGracefulShutdown(log *slog.Logger, app *gin.Engine) {
	host := ""
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		// for dev we use localhost to avoid firewall
		// requests on each run for Windows
		host = "127.0.0.1"
	}

	srv := &http.Server{
		Addr:    host + ":" + config.GetEnv().ServerPort,
		Handler: app,
	}

	go func() {
		log.Info("Server started", "address", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen:", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown signal received")

	// The context is used to inform the server it has 10 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown:", "error", err)
	}

	log.Info("Server gracefully stopped")
}

func setUpRoutes(r *gin.Engine) {
	env := config.GetEnv()

	v1 := r.Group("/api/v1")
	system_healthcheck.GetHealthcheckController().RegisterRoutes(v1)

	limited := v1.Group("")
	limited.Use(rate_limit.NewRateLimiter().Middleware(env.ApiRequestsPerSecond, 0))

	visitors_querying.GetVisitorsController().RegisterRoutes(limited)
}

func enableCors(ginApp *gin.Engine) {
	if config.GetEnv().EnvMode == env_utils.EnvModeDevelopment {
		ginApp.Use(cors.New(cors.Config{
			AllowOrigins: []string{"*"},
			AllowMethods: []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders: []string{
				"Origin",
				"Content-Length",
				"Content-Type",
				"Accept",
				"Accept-Language",
				"Accept-Encoding",
				"Access-Control-Request-Method",
				"Access-Control-Request-Headers",
			},
		}))
	}
}
