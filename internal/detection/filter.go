// Package detection classifies raw aircraft state vectors as landed or
// landing and derives the deduplication key under which an arrival is stored.
package detection

import (
	"strings"
	"time"

	"github.com/Copubah/jkia-aircraft-notifier/internal/fetcher"
)

// UnknownCallsign substitutes for blank or missing callsigns.
const UnknownCallsign = "Unknown"

// Thresholds hold the landing classification cutoffs. An aircraft below both
// cutoffs, or with its on-ground flag set, counts as landed/landing.
type Thresholds struct {
	MaxAltitudeMeters float64
	MaxVelocityMPS    float64
}

// DefaultThresholds returns the production policy: below 100 m and slower
// than 50 m/s.
func DefaultThresholds() Thresholds {
	return Thresholds{MaxAltitudeMeters: 100, MaxVelocityMPS: 50}
}

// Arrival is a classified landing event for one aircraft at one instant.
// Immutable once created.
type Arrival struct {
	Callsign   string
	Altitude   *float64
	OnGround   bool
	Velocity   *float64
	DetectedAt time.Time
}

// Filter selects landed/landing aircraft from a batch of state vectors.
type Filter struct {
	thresholds Thresholds
}

// NewFilter constructs a Filter with explicit thresholds.
func NewFilter(t Thresholds) *Filter {
	return &Filter{thresholds: t}
}

// Classify returns the arrivals detected in the batch, preserving input
// order. A batch with no qualifying aircraft yields an empty slice; that is
// the common case, not an error. Pure: no I/O, deterministic for a given
// batch and now.
func (f *Filter) Classify(states []fetcher.StateVector, now time.Time) []Arrival {
	arrivals := make([]Arrival, 0, len(states))
	for _, sv := range states {
		if !f.qualifies(sv) {
			continue
		}
		arrivals = append(arrivals, Arrival{
			Callsign:   NormalizeCallsign(sv.Callsign),
			Altitude:   sv.BaroAltitude,
			OnGround:   sv.OnGround,
			Velocity:   sv.Velocity,
			DetectedAt: now.UTC(),
		})
	}
	return arrivals
}

// qualifies applies the landing predicate. The on-ground flag alone is
// sufficient; otherwise both altitude and velocity must be reported and
// under threshold. A missing reading never qualifies under the second branch.
func (f *Filter) qualifies(sv fetcher.StateVector) bool {
	if sv.OnGround {
		return true
	}
	if sv.BaroAltitude == nil || sv.Velocity == nil {
		return false
	}
	return *sv.BaroAltitude < f.thresholds.MaxAltitudeMeters && *sv.Velocity < f.thresholds.MaxVelocityMPS
}

// NormalizeCallsign trims feed padding and substitutes the unknown sentinel
// for blank callsigns.
func NormalizeCallsign(callsign string) string {
	trimmed := strings.TrimSpace(callsign)
	if trimmed == "" {
		return UnknownCallsign
	}
	return trimmed
}
