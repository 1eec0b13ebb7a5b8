package visitors_core

type TrafficSource string

const (
	TrafficSourceOrganic  TrafficSource = "Organic"
	TrafficSourcePaid     TrafficSource = "Paid"
	TrafficSourceReferral TrafficSource = "Referral"
	TrafficSourceSocial   TrafficSource = "Social"
	TrafficSourceEmail    TrafficSource = "Email"
)

func (s TrafficSource) IsValid() bool {
	switch s {
	case TrafficSourceOrganic, TrafficSourcePaid, TrafficSourceReferral,
		TrafficSourceSocial, TrafficSourceEmail:
		return true
	default:
		return false
	}
}

var TrafficSources = []TrafficSource{
	TrafficSourceOrganic,
	TrafficSourcePaid,
	TrafficSourceReferral,
	TrafficSourceSocial,
	TrafficSourceEmail,
}
