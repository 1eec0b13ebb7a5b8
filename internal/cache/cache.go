package cache

import (
	"crypto/tls"
	"os"
	"sync"

	"visitorlogs/internal/config"
	"visitorlogs/internal/util/logger"

	"github.com/valkey-io/valkey-go"
)

var (
	once         sync.Once
	valkeyClient valkey.Client
)

// GetCache returns the shared Valkey client, or nil when VALKEY_HOST is not
// set and caching is disabled.
func GetCache() valkey.Client {
	once.Do(func() {
		env := config.GetEnv()
		if env.ValkeyHost == "" {
			return
		}

		options := valkey.ClientOption{
			InitAddress: []string{env.ValkeyHost + ":" + env.ValkeyPort},
			Password:    env.ValkeyPassword,
			Username:    env.ValkeyUsername,
		}

		if env.ValkeyIsSsl {
			options.TLSConfig = &tls.Config{
				ServerName: env.ValkeyHost,
			}
		}

		client, err := valkey.NewClient(options)
		if err != nil {
			logger.GetLogger().Error("Failed to connect to Valkey", "error", err)
			os.Exit(1)
		}

		valkeyClient = client
	})

	return valkeyClient
}

func IsEnabled() bool {
	return GetCache() != nil
}
