package visitors_core

import (
	"time"

	"github.com/google/uuid"
)

// Organization is a fictitious company profile that visits originate from.
type Organization struct {
	Name                 string `json:"name"`
	Industry             string `json:"industry"`
	HeadquartersLocation string `json:"headquartersLocation"`
	SourceIP             string `json:"sourceIp"`
}

// LogRecord is one synthetic web visit. Field order here is the key order
// of the written JSON.
type LogRecord struct {
	IP            string        `json:"ip"`
	Company       string        `json:"company"`
	Industry      string        `json:"industry"`
	Location      string        `json:"location"`
	URL           string        `json:"url"`
	Timestamp     string        `json:"timestamp"`
	UserAgent     string        `json:"userAgent"`
	TimeOnPage    int           `json:"timeOnPage"`
	PagesViewed   int           `json:"pagesViewed"`
	Referrer      string        `json:"referrer"`
	TrafficSource TrafficSource `json:"trafficSource"`
	VisitCount    int           `json:"visitCount"`
}

// Batch is the ordered output of one generation run. Only Records is
// persisted to the JSON file; ID and GeneratedAt travel to the other sinks.
type Batch struct {
	ID          uuid.UUID
	GeneratedAt time.Time
	Records     []LogRecord
}

func NewBatch(records []LogRecord, generatedAt time.Time) *Batch {
	if records == nil {
		records = []LogRecord{}
	}

	return &Batch{
		ID:          uuid.New(),
		GeneratedAt: generatedAt.UTC(),
		Records:     records,
	}
}

func (b *Batch) Len() int {
	return len(b.Records)
}
