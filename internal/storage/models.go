package storage

import "time"

// ArrivalRecord is the persisted form of a detected arrival. At most one
// record exists per arrival key; a later detection with the same key
// overwrites the earlier one.
type ArrivalRecord struct {
	ArrivalKey     string
	ArrivalDate    string // UTC calendar date, YYYY-MM-DD
	Timestamp      time.Time
	Callsign       string
	AltitudeMeters float64
	OnGround       bool
	VelocityMPS    float64
	DetectionTime  string // human-readable time of day, HH:MM UTC
	CreatedAt      time.Time
}
