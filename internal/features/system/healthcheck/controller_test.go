package system_healthcheck

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	disk_utils "visitorlogs/internal/util/disk"
	"visitorlogs/internal/util/logger"
	test_utils "visitorlogs/internal/util/testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRouter(service *HealthcheckService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	controller := &HealthcheckController{service}
	controller.RegisterRoutes(router.Group("/api/v1"))

	return router
}

func Test_CheckHealth_WithWritableOutputDir_ReturnsOK(t *testing.T) {
	path := filepath.Join(t.TempDir(), "visitorLogs.json")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	router := createTestRouter(&HealthcheckService{
		outputPath: path,
		diskUsage:  disk_utils.GetUsage,
		logger:     logger.GetLogger(),
	})

	var response HealthcheckResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/system/health", http.StatusOK, &response)

	assert.Equal(t, StatusOK, response.Status)
	assert.Equal(t, CacheStatusDisabled, response.Cache)
	assert.True(t, response.IsOutputFile)
	require.NotNil(t, response.Disk)
	assert.Greater(t, response.Disk.FreeBytes, uint64(0))
}

func Test_CheckHealth_WhenCacheUnreachable_ReturnsDegraded(t *testing.T) {
	router := createTestRouter(&HealthcheckService{
		outputPath: filepath.Join(t.TempDir(), "visitorLogs.json"),
		diskUsage:  disk_utils.GetUsage,
		cacheCheck: func() error {
			return errors.New("connection refused")
		},
		isCacheUsed: true,
		logger:      logger.GetLogger(),
	})

	var response HealthcheckResponseDTO
	test_utils.MakeGetRequestAndUnmarshal(t, router, "/api/v1/system/health", http.StatusOK, &response)

	assert.Equal(t, StatusDegraded, response.Status)
	assert.Equal(t, CacheStatusUnavailable, response.Cache)
	assert.False(t, response.IsOutputFile)
}

func Test_CheckHealth_WhenDiskUnreadable_ReturnsServiceUnavailable(t *testing.T) {
	router := createTestRouter(&HealthcheckService{
		outputPath: "visitorLogs.json",
		diskUsage: func(string) (*disk_utils.Usage, error) {
			return nil, errors.New("statfs failed")
		},
		logger: logger.GetLogger(),
	})

	resp := test_utils.MakeGetRequest(t, router, "/api/v1/system/health", http.StatusServiceUnavailable)

	assert.Contains(t, string(resp.Body), "disk check failed")
}
