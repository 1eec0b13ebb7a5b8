package visitors_exporting

import (
	"time"

	visitors_core "visitorlogs/internal/features/visitors/core"

	"github.com/google/uuid"
)

// VisitorLogRow is the relational form of a LogRecord. Position keeps the
// generation order inside a batch.
type VisitorLogRow struct {
	ID            uuid.UUID `json:"id"            gorm:"column:id;type:uuid;primaryKey"`
	BatchID       uuid.UUID `json:"batchId"       gorm:"column:batch_id;type:uuid;not null;index:idx_visitor_logs_batch_position,priority:1"`
	Position      int       `json:"position"      gorm:"column:position;not null;index:idx_visitor_logs_batch_position,priority:2"`
	IP            string    `json:"ip"            gorm:"column:ip;type:text;not null;index"`
	Company       string    `json:"company"       gorm:"column:company;type:text;not null"`
	Industry      string    `json:"industry"      gorm:"column:industry;type:text;not null"`
	Location      string    `json:"location"      gorm:"column:location;type:text;not null"`
	URL           string    `json:"url"           gorm:"column:url;type:text;not null;index"`
	Timestamp     string    `json:"timestamp"     gorm:"column:timestamp;type:text;not null"`
	UserAgent     string    `json:"userAgent"     gorm:"column:user_agent;type:text;not null"`
	TimeOnPage    int       `json:"timeOnPage"    gorm:"column:time_on_page;not null"`
	PagesViewed   int       `json:"pagesViewed"   gorm:"column:pages_viewed;not null"`
	Referrer      string    `json:"referrer"      gorm:"column:referrer;type:text;not null"`
	TrafficSource string    `json:"trafficSource" gorm:"column:traffic_source;type:text;not null"`
	VisitCount    int       `json:"visitCount"    gorm:"column:visit_count;not null"`
	GeneratedAt   time.Time `json:"generatedAt"   gorm:"column:generated_at;not null"`
}

func (VisitorLogRow) TableName() string {
	return "visitor_logs"
}

func NewVisitorLogRows(batch *visitors_core.Batch) []VisitorLogRow {
	rows := make([]VisitorLogRow, len(batch.Records))

	for i, record := range batch.Records {
		rows[i] = VisitorLogRow{
			ID:            uuid.New(),
			BatchID:       batch.ID,
			Position:      i,
			IP:            record.IP,
			Company:       record.Company,
			Industry:      record.Industry,
			Location:      record.Location,
			URL:           record.URL,
			Timestamp:     record.Timestamp,
			UserAgent:     record.UserAgent,
			TimeOnPage:    record.TimeOnPage,
			PagesViewed:   record.PagesViewed,
			Referrer:      record.Referrer,
			TrafficSource: string(record.TrafficSource),
			VisitCount:    record.VisitCount,
			GeneratedAt:   batch.GeneratedAt,
		}
	}

	return rows
}
