package visitors_generating

import (
	"math/rand"
	"time"

	visitors_core "visitorlogs/internal/features/visitors/core"
	time_parser "visitorlogs/internal/util/time"

	"github.com/brianvoe/gofakeit/v6"
)

// recordSampler owns one random stream. It is not safe for concurrent use;
// parallel generation gives each worker its own sampler.
type recordSampler struct {
	rng   *rand.Rand
	faker *gofakeit.Faker
	clock visitors_core.Clock
}

func newRecordSampler(seed int64, clock visitors_core.Clock) *recordSampler {
	rng := rand.New(rand.NewSource(seed))

	return &recordSampler{
		rng:   rng,
		faker: gofakeit.New(rng.Int63()),
		clock: clock,
	}
}

func (s *recordSampler) sample() visitors_core.LogRecord {
	organization := visitors_core.Organizations[s.rng.Intn(len(visitors_core.Organizations))]
	path := visitors_core.Paths[s.rng.Intn(len(visitors_core.Paths))]
	timestamp := s.sampleTimestamp()
	userAgent := visitors_core.UserAgents[s.rng.Intn(len(visitors_core.UserAgents))]
	timeOnPage := s.intBetween(visitors_core.MinTimeOnPage, visitors_core.MaxTimeOnPage)
	pagesViewed := s.intBetween(visitors_core.MinPagesViewed, visitors_core.MaxPagesViewed)
	referrer := s.faker.URL()
	trafficSource := visitors_core.TrafficSources[s.rng.Intn(len(visitors_core.TrafficSources))]
	visitCount := s.intBetween(visitors_core.MinVisitCount, visitors_core.MaxVisitCount)

	return visitors_core.LogRecord{
		IP:            organization.SourceIP,
		Company:       organization.Name,
		Industry:      organization.Industry,
		Location:      organization.HeadquartersLocation,
		URL:           path,
		Timestamp:     timestamp,
		UserAgent:     userAgent,
		TimeOnPage:    timeOnPage,
		PagesViewed:   pagesViewed,
		Referrer:      referrer,
		TrafficSource: trafficSource,
		VisitCount:    visitCount,
	}
}

// sampleTimestamp moves "now" back by a whole number of days and a whole
// number of minutes, both drawn independently.
func (s *recordSampler) sampleTimestamp() string {
	days := s.intBetween(0, visitors_core.MaxTimestampOffsetDays)
	minutes := s.intBetween(0, visitors_core.MaxTimestampOffsetMinutes)
	offset := time.Duration(days)*24*time.Hour + time.Duration(minutes)*time.Minute

	return time_parser.FormatISOTimestamp(s.clock().Add(-offset))
}

// intBetween returns an integer in [low, high], both ends inclusive.
func (s *recordSampler) intBetween(low, high int) int {
	return low + s.rng.Intn(high-low+1)
}
