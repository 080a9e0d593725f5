package fetcher

import "context"

// StateVector is one aircraft's reported sample from the feed. Altitude and
// velocity pointers are nil when the transponder did not report them.
type StateVector struct {
	ICAO24       string
	Callsign     string
	BaroAltitude *float64
	OnGround     bool
	Velocity     *float64
}

// StateFetcher retrieves the current state vectors inside the configured region.
type StateFetcher interface {
	FetchStates(ctx context.Context) ([]StateVector, error)
}
