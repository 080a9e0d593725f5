package detection

import (
	"fmt"
	"time"
)

// BuildArrivalKey derives the deduplication key for a classified arrival:
// date, normalized callsign, and two-digit UTC hour joined by '#'. Repeated
// detections of one callsign within the same UTC hour collapse onto one key,
// which matches the sampling cadence: a landing aircraft is typically visible
// across several consecutive samples.
//
// Known limits of the hour granularity: two genuinely distinct arrivals of
// the same callsign inside one UTC hour collide, and a landing sequence
// straddling an hour boundary produces two records.
func BuildArrivalKey(a Arrival, now time.Time) string {
	utc := now.UTC()
	return fmt.Sprintf("%s#%s#%s", utc.Format("2006-01-02"), a.Callsign, utc.Format("15"))
}
