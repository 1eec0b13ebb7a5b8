package visitors_validation

import "time"

type Violation struct {
	Index   int    `json:"index"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Report summarises one verified batch. Only the first
// maxReportedViolations violations are kept; ViolationCount is the total.
type Report struct {
	Path           string         `json:"path,omitempty"`
	Count          int            `json:"count"`
	ExpectedCount  int            `json:"expectedCount"`
	ReferenceTime  time.Time      `json:"referenceTime"`
	ViolationCount int            `json:"violationCount"`
	Violations     []Violation    `json:"violations"`
	Organizations  map[string]int `json:"organizations"`
	TrafficSources map[string]int `json:"trafficSources"`
}

func (r *Report) IsValid() bool {
	return r.ViolationCount == 0
}

func (r *Report) addViolation(index int, field, code, message string) {
	r.ViolationCount++
	if len(r.Violations) < maxReportedViolations {
		r.Violations = append(r.Violations, Violation{
			Index:   index,
			Field:   field,
			Code:    code,
			Message: message,
		})
	}
}
