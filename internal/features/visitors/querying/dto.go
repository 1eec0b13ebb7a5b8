package visitors_querying

import (
	"time"

	"github.com/google/uuid"
)

type GetVisitorsRequestDTO struct {
	IP  string `form:"ip"`
	URL string `form:"url"`
}

type GenerateVisitorsRequestDTO struct {
	Count *int `json:"count"`
}

type GenerateVisitorsResponseDTO struct {
	Count       int       `json:"count"`
	BatchID     uuid.UUID `json:"batchId"`
	Path        string    `json:"path"`
	GeneratedAt time.Time `json:"generatedAt"`
}
