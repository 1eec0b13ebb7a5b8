package system_healthcheck

import disk_utils "visitorlogs/internal/util/disk"

type HealthcheckResponseDTO struct {
	Status       string            `json:"status"`
	OutputPath   string            `json:"outputPath"`
	IsOutputFile bool              `json:"isOutputFile"`
	Disk         *disk_utils.Usage `json:"disk"`
	Cache        string            `json:"cache"`
}

const (
	StatusOK       = "OK"
	StatusDegraded = "DEGRADED"

	CacheStatusDisabled    = "disabled"
	CacheStatusAvailable   = "available"
	CacheStatusUnavailable = "unavailable"
)
