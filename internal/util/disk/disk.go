package disk_utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v4/disk"
)

type Usage struct {
	Path        string  `json:"path"`
	TotalBytes  uint64  `json:"totalBytes"`
	FreeBytes   uint64  `json:"freeBytes"`
	UsedBytes   uint64  `json:"usedBytes"`
	UsedPercent float64 `json:"usedPercent"`
}

// GetUsage reports usage of the file system holding path. When path does
// not exist yet, the closest existing ancestor directory is measured.
func GetUsage(path string) (*Usage, error) {
	absolutePath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}

	measuredPath := closestExistingDir(absolutePath)

	stat, err := disk.Usage(measuredPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read disk usage for %s: %w", measuredPath, err)
	}

	return &Usage{
		Path:        measuredPath,
		TotalBytes:  stat.Total,
		FreeBytes:   stat.Free,
		UsedBytes:   stat.Used,
		UsedPercent: stat.UsedPercent,
	}, nil
}

func closestExistingDir(path string) string {
	current := path
	for {
		if info, err := os.Stat(current); err == nil && info.IsDir() {
			return current
		}

		parent := filepath.Dir(current)
		if parent == current {
			return current
		}

		current = parent
	}
}
