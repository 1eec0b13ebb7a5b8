package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	env_utils "visitorlogs/internal/util/env"
	"visitorlogs/internal/util/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

var log = logger.GetLogger()

const (
	MaxVisitorLogsCount   = 1_000_000
	MaxVisitorLogsWorkers = 64
)

type EnvVariables struct {
	EnvMode env_utils.EnvMode `env:"ENV_MODE" env-default:"development"`
	// generation
	VisitorLogsCount      int    `env:"VISITOR_LOGS_COUNT"       env-default:"100"`
	VisitorLogsOutputPath string `env:"VISITOR_LOGS_OUTPUT_PATH" env-default:"visitorLogs.json"`
	VisitorLogsSeed       int64  `env:"VISITOR_LOGS_SEED"        env-default:"0"`
	VisitorLogsWorkers    int    `env:"VISITOR_LOGS_WORKERS"     env-default:"1"`
	// exporting
	VisitorLogsSqlitePath string   `env:"VISITOR_LOGS_SQLITE_PATH"`
	DatabaseDsn           string   `env:"DATABASE_DSN"`
	KafkaBrokers          []string `env:"KAFKA_BROKERS"            env-separator:","`
	KafkaTopic            string   `env:"KAFKA_TOPIC"              env-default:"visitor.logs"`
	// cache
	ValkeyHost     string `env:"VALKEY_HOST"`
	ValkeyPort     string `env:"VALKEY_PORT"              env-default:"6379"`
	ValkeyUsername string `env:"VALKEY_USERNAME"`
	ValkeyPassword string `env:"VALKEY_PASSWORD"`
	ValkeyIsSsl    bool   `env:"VALKEY_IS_SSL"            env-default:"false"`
	// api
	ServerPort           string `env:"SERVER_PORT"              env-default:"4005"`
	ApiRequestsPerSecond int    `env:"API_REQUESTS_PER_SECOND"  env-default:"20"`
}

var (
	env   EnvVariables
	once  sync.Once
	envMu sync.RWMutex
)

func GetEnv() EnvVariables {
	once.Do(loadEnvVariables)

	envMu.RLock()
	defer envMu.RUnlock()
	return env
}

// Override applies command line overrides on top of the loaded environment.
// It must run before any feature singleton reads the configuration.
func Override(apply func(env *EnvVariables)) error {
	once.Do(loadEnvVariables)

	envMu.Lock()
	defer envMu.Unlock()

	updated := env
	apply(&updated)

	if err := validateEnvVariables(&updated); err != nil {
		return err
	}

	env = updated
	return nil
}

func loadEnvVariables() {
	loaded, err := readEnvVariables()
	if err != nil {
		log.Error("Configuration could not be loaded", "error", err)
		os.Exit(1)
	}

	env = loaded
	log.Info("Environment variables loaded successfully!", "mode", env.EnvMode)
}

func readEnvVariables() (EnvVariables, error) {
	var loaded EnvVariables

	cwd, err := os.Getwd()
	if err != nil {
		log.Warn("could not get current working directory", "error", err)
		cwd = "."
	}

	envPaths := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(findModuleRoot(cwd), ".env"),
	}

	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Info("Successfully loaded .env", "path", path)
			break
		}
	}

	if err := cleanenv.ReadEnv(&loaded); err != nil {
		return loaded, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := validateEnvVariables(&loaded); err != nil {
		return loaded, err
	}

	return loaded, nil
}

func validateEnvVariables(env *EnvVariables) error {
	if !env.EnvMode.IsValid() {
		return fmt.Errorf("ENV_MODE is invalid: %q", env.EnvMode)
	}

	if env.VisitorLogsCount < 0 || env.VisitorLogsCount > MaxVisitorLogsCount {
		return fmt.Errorf("VISITOR_LOGS_COUNT must be between 0 and %d, got %d",
			MaxVisitorLogsCount, env.VisitorLogsCount)
	}

	if env.VisitorLogsWorkers < 1 || env.VisitorLogsWorkers > MaxVisitorLogsWorkers {
		return fmt.Errorf("VISITOR_LOGS_WORKERS must be between 1 and %d, got %d",
			MaxVisitorLogsWorkers, env.VisitorLogsWorkers)
	}

	if strings.TrimSpace(env.VisitorLogsOutputPath) == "" {
		return fmt.Errorf("VISITOR_LOGS_OUTPUT_PATH is empty")
	}

	if env.ApiRequestsPerSecond <= 0 {
		return fmt.Errorf("API_REQUESTS_PER_SECOND must be positive, got %d", env.ApiRequestsPerSecond)
	}

	if len(env.KafkaBrokers) > 0 && env.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC is empty while KAFKA_BROKERS is set")
	}

	return nil
}

func findModuleRoot(start string) string {
	root := start
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			return root
		}

		parent := filepath.Dir(root)
		if parent == root {
			return start
		}

		root = parent
	}
}
