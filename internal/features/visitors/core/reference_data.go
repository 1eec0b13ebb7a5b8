package visitors_core

import "slices"

// Inclusive bounds of the numeric record fields.
const (
	MinTimeOnPage  = 30
	MaxTimeOnPage  = 600
	MinPagesViewed = 1
	MaxPagesViewed = 10
	MinVisitCount  = 1
	MaxVisitCount  = 5

	MaxTimestampOffsetDays    = 30
	MaxTimestampOffsetMinutes = 1440
)

var Organizations = []Organization{
	{Name: "Google LLC", Industry: "Technology", HeadquartersLocation: "Mountain View, CA, USA", SourceIP: "8.8.8.8"},
	{Name: "Microsoft Corporation", Industry: "Software", HeadquartersLocation: "Redmond, WA, USA", SourceIP: "13.107.21.200"},
	{Name: "Amazon Web Services", Industry: "Cloud Computing", HeadquartersLocation: "Seattle, WA, USA", SourceIP: "52.94.76.80"},
	{Name: "Meta Platforms", Industry: "Social Media", HeadquartersLocation: "Menlo Park, CA, USA", SourceIP: "66.220.144.0"},
	{Name: "IBM", Industry: "IT Services", HeadquartersLocation: "Armonk, NY, USA", SourceIP: "129.42.38.1"},
	{Name: "Oracle", Industry: "Enterprise Software", HeadquartersLocation: "Austin, TX, USA", SourceIP: "137.254.16.1"},
	{Name: "Salesforce", Industry: "CRM", HeadquartersLocation: "San Francisco, CA, USA", SourceIP: "96.43.144.1"},
	{Name: "Adobe", Industry: "Design Software", HeadquartersLocation: "San Jose, CA, USA", SourceIP: "192.147.130.1"},
	{Name: "Netflix", Industry: "Media", HeadquartersLocation: "Los Gatos, CA, USA", SourceIP: "52.26.14.0"},
	{Name: "Spotify", Industry: "Streaming", HeadquartersLocation: "Stockholm, Sweden", SourceIP: "104.199.64.1"},
}

var Paths = []string{
	"/pricing", "/products/chat", "/products/voice", "/contact", "/about",
	"/support", "/blog/customer-service", "/webinars", "/case-studies",
	"/resources", "/features", "/signup", "/login",
}

var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X)",
	"Mozilla/5.0 (Linux; Android 11; Pixel 5)",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:91.0)",
	"Mozilla/5.0 (iPad; CPU OS 14_0 like Mac OS X)",
}

// FindOrganizationByName returns the organization with the given company
// name, or nil.
func FindOrganizationByName(name string) *Organization {
	for i := range Organizations {
		if Organizations[i].Name == name {
			return &Organizations[i]
		}
	}

	return nil
}

func IsKnownPath(path string) bool {
	return slices.Contains(Paths, path)
}

func IsKnownUserAgent(userAgent string) bool {
	return slices.Contains(UserAgents, userAgent)
}

// MatchesOrganization reports whether the record's company related fields
// form exactly one of the reference tuples.
func (r *LogRecord) MatchesOrganization() bool {
	organization := FindOrganizationByName(r.Company)
	if organization == nil {
		return false
	}

	return organization.SourceIP == r.IP &&
		organization.Industry == r.Industry &&
		organization.HeadquartersLocation == r.Location
}
