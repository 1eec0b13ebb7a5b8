package visitors_core

import "time"

// Clock supplies "now" for timestamp generation and verification.
type Clock func() time.Time

// Now reads the wall clock in UTC so that the trailing "Z" of generated
// timestamps is truthful whatever the host time zone is.
func Now() time.Time {
	return time.Now().UTC()
}
