package visitors_validation

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	visitors_core "visitorlogs/internal/features/visitors/core"
	visitors_exporting "visitorlogs/internal/features/visitors/exporting"
	time_parser "visitorlogs/internal/util/time"

	"github.com/valyala/fastjson"
)

const (
	// AnyCount disables the record count check.
	AnyCount = -1

	maxReportedViolations = 100

	// Timestamps are drawn relative to the generation clock, which runs
	// slightly before the reference time of a written file.
	timestampWindowSlack = time.Minute

	// File modification times come from a coarse kernel clock.
	fileTimeSkew = time.Second
)

var (
	stringFields = []string{
		"ip", "company", "industry", "location", "url",
		"timestamp", "userAgent", "referrer", "trafficSource",
	}

	integerFields = []struct {
		name     string
		min, max int
	}{
		{"timeOnPage", visitors_core.MinTimeOnPage, visitors_core.MaxTimeOnPage},
		{"pagesViewed", visitors_core.MinPagesViewed, visitors_core.MaxPagesViewed},
		{"visitCount", visitors_core.MinVisitCount, visitors_core.MaxVisitCount},
	}

	knownFields = func() map[string]bool {
		fields := make(map[string]bool, len(stringFields)+len(integerFields))
		for _, name := range stringFields {
			fields[name] = true
		}
		for _, field := range integerFields {
			fields[field.name] = true
		}
		return fields
	}()

	maxTimestampAge = visitors_core.MaxTimestampOffsetDays*24*time.Hour +
		visitors_core.MaxTimestampOffsetMinutes*time.Minute
)

// BatchValidator checks written batches record by record without binding
// them to LogRecord, so type and key problems are reported precisely.
type BatchValidator struct {
	parserPool fastjson.ParserPool
	clock      visitors_core.Clock
	logger     *slog.Logger
}

func NewBatchValidator(clock visitors_core.Clock, logger *slog.Logger) *BatchValidator {
	if clock == nil {
		clock = visitors_core.Now
	}

	return &BatchValidator{
		clock:  clock,
		logger: logger,
	}
}

// ValidateFile verifies a batch file, using its modification time as the
// upper bound of the timestamp window.
func (v *BatchValidator) ValidateFile(path string, expectedCount int) (*Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	content, err := visitors_exporting.ReadBatchFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	report, err := v.Validate(content, expectedCount, info.ModTime().Add(fileTimeSkew))
	if err != nil {
		return nil, fmt.Errorf("failed to verify %s: %w", path, err)
	}

	report.Path = path

	v.logger.Info("Batch verified",
		slog.String("path", path),
		slog.Int("count", report.Count),
		slog.Int("violations", report.ViolationCount),
	)

	return report, nil
}

// Validate verifies content as a batch. A zero reference time means now.
// Malformed JSON is an error; everything else is reported as violations.
func (v *BatchValidator) Validate(content []byte, expectedCount int, referenceTime time.Time) (*Report, error) {
	if referenceTime.IsZero() {
		referenceTime = v.clock()
	}

	parser := v.parserPool.Get()
	defer v.parserPool.Put(parser)

	root, err := parser.ParseBytes(content)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	report := &Report{
		ExpectedCount:  expectedCount,
		ReferenceTime:  referenceTime.UTC(),
		Violations:     []Violation{},
		Organizations:  map[string]int{},
		TrafficSources: map[string]int{},
	}

	if root.Type() != fastjson.TypeArray {
		report.addViolation(-1, "", visitors_core.ErrorNotAnArray,
			fmt.Sprintf("expected a JSON array, got %s", root.Type()))
		return report, nil
	}

	items, _ := root.Array()
	report.Count = len(items)

	if expectedCount != AnyCount && expectedCount != len(items) {
		report.addViolation(-1, "", visitors_core.ErrorCountMismatch,
			fmt.Sprintf("expected %d records, found %d", expectedCount, len(items)))
	}

	for index, item := range items {
		v.validateRecord(report, index, item)
	}

	return report, nil
}

func (v *BatchValidator) validateRecord(report *Report, index int, item *fastjson.Value) {
	object, err := item.Object()
	if err != nil {
		report.addViolation(index, "", visitors_core.ErrorInvalidFieldType, "record is not a JSON object")
		return
	}

	object.Visit(func(key []byte, _ *fastjson.Value) {
		if !knownFields[string(key)] {
			report.addViolation(index, string(key), visitors_core.ErrorUnexpectedField,
				fmt.Sprintf("unexpected field %q", key))
		}
	})

	values := make(map[string]string, len(stringFields))
	for _, name := range stringFields {
		value, ok := readString(report, index, object, name)
		if ok {
			values[name] = value
		}
	}

	for _, field := range integerFields {
		value, ok := readInteger(report, index, object, field.name)
		if ok && (value < field.min || value > field.max) {
			report.addViolation(index, field.name, visitors_core.ErrorValueOutOfRange,
				fmt.Sprintf("%s %d is outside [%d, %d]", field.name, value, field.min, field.max))
		}
	}

	v.validateOrganization(report, index, values)

	if path, ok := values["url"]; ok && !visitors_core.IsKnownPath(path) {
		report.addViolation(index, "url", visitors_core.ErrorUnknownPath,
			fmt.Sprintf("unknown path %q", path))
	}

	if userAgent, ok := values["userAgent"]; ok && !visitors_core.IsKnownUserAgent(userAgent) {
		report.addViolation(index, "userAgent", visitors_core.ErrorUnknownUserAgent,
			fmt.Sprintf("unknown user agent %q", userAgent))
	}

	if source, ok := values["trafficSource"]; ok {
		trafficSource := visitors_core.TrafficSource(source)
		if trafficSource.IsValid() {
			report.TrafficSources[source]++
		} else {
			report.addViolation(index, "trafficSource", visitors_core.ErrorUnknownTrafficSource,
				fmt.Sprintf("unknown traffic source %q", source))
		}
	}

	if timestamp, ok := values["timestamp"]; ok {
		v.validateTimestamp(report, index, timestamp)
	}

	if referrer, ok := values["referrer"]; ok && !isAbsoluteURL(referrer) {
		report.addViolation(index, "referrer", visitors_core.ErrorInvalidReferrer,
			fmt.Sprintf("referrer %q is not an absolute URL", referrer))
	}
}

func (v *BatchValidator) validateOrganization(report *Report, index int, values map[string]string) {
	for _, name := range []string{"ip", "company", "industry", "location"} {
		if _, ok := values[name]; !ok {
			return
		}
	}

	company := values["company"]
	record := visitors_core.LogRecord{
		IP:       values["ip"],
		Company:  company,
		Industry: values["industry"],
		Location: values["location"],
	}

	if !record.MatchesOrganization() {
		report.addViolation(index, "company", visitors_core.ErrorUnknownOrganization,
			fmt.Sprintf("ip, company, industry and location of %q do not match one organization", company))
		return
	}

	report.Organizations[company]++
}

func (v *BatchValidator) validateTimestamp(report *Report, index int, value string) {
	timestamp, err := time_parser.ParseTimestamp(value)
	if err != nil {
		report.addViolation(index, "timestamp", visitors_core.ErrorInvalidTimestamp, err.Error())
		return
	}

	latest := report.ReferenceTime
	earliest := latest.Add(-maxTimestampAge - timestampWindowSlack)

	if timestamp.After(latest) || timestamp.Before(earliest) {
		report.addViolation(index, "timestamp", visitors_core.ErrorTimestampOutOfWindow,
			fmt.Sprintf("timestamp %s is outside [%s, %s]",
				value, earliest.Format(time.RFC3339), latest.Format(time.RFC3339)))
	}
}

func readString(report *Report, index int, object *fastjson.Object, name string) (string, bool) {
	value := object.Get(name)
	if value == nil {
		report.addViolation(index, name, visitors_core.ErrorMissingField,
			fmt.Sprintf("missing field %q", name))
		return "", false
	}

	bytes, err := value.StringBytes()
	if err != nil {
		report.addViolation(index, name, visitors_core.ErrorInvalidFieldType,
			fmt.Sprintf("%s must be a string, got %s", name, value.Type()))
		return "", false
	}

	return string(bytes), true
}

func readInteger(report *Report, index int, object *fastjson.Object, name string) (int, bool) {
	value := object.Get(name)
	if value == nil {
		report.addViolation(index, name, visitors_core.ErrorMissingField,
			fmt.Sprintf("missing field %q", name))
		return 0, false
	}

	number, err := value.Int()
	if err != nil {
		report.addViolation(index, name, visitors_core.ErrorInvalidFieldType,
			fmt.Sprintf("%s must be an integer, got %s", name, value.String()))
		return 0, false
	}

	return number, true
}

func isAbsoluteURL(value string) bool {
	parsed, err := url.Parse(value)
	if err != nil {
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
