package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Copubah/jkia-aircraft-notifier/internal/config"
)

const statesPath = "/states/all"

// A state row needs at least the fields up to on_ground (index 8) to be usable.
// OpenSky row layout: [icao24, callsign, origin_country, time_position,
// last_contact, longitude, latitude, baro_altitude, on_ground, velocity, ...].
const minStateFields = 9

// OpenSkyOptions parameterise the OpenSky states fetcher.
type OpenSkyOptions struct {
	BaseURL   string
	Box       config.BoundingBox
	Timeout   time.Duration
	UserAgent string
	Username  string
	Password  string
}

// OpenSky fetches bounded state vectors from the OpenSky Network API.
type OpenSky struct {
	opts    OpenSkyOptions
	logger  zerolog.Logger
	client  *http.Client
	baseURL string
}

// NewOpenSky constructs an OpenSky fetcher.
func NewOpenSky(opts OpenSkyOptions, logger zerolog.Logger) *OpenSky {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://opensky-network.org/api"
	}

	return &OpenSky{
		opts:    opts,
		logger:  logger.With().Str("component", "opensky_fetcher").Logger(),
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// FetchStates retrieves the current state vectors inside the bounding box.
// Rows shorter than the minimum schema are skipped, not errors.
func (o *OpenSky) FetchStates(ctx context.Context) ([]StateVector, error) {
	box := o.opts.Box
	if box.LatMin >= box.LatMax || box.LonMin >= box.LonMax {
		return nil, errors.New("bounding box is inverted or empty")
	}

	query := url.Values{}
	query.Set("lamin", formatCoord(box.LatMin))
	query.Set("lamax", formatCoord(box.LatMax))
	query.Set("lomin", formatCoord(box.LonMin))
	query.Set("lomax", formatCoord(box.LonMax))

	endpoint := o.baseURL + statesPath + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if ua := strings.TrimSpace(o.opts.UserAgent); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if o.opts.Username != "" && o.opts.Password != "" {
		req.SetBasicAuth(o.opts.Username, o.opts.Password)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp.StatusCode, payload)
	}

	var raw statesResponse
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("parse states response: %w", err)
	}

	states := decodeStates(raw)
	o.logger.Debug().
		Int("received", len(raw.States)).
		Int("decoded", len(states)).
		Msg("fetched state vectors")
	return states, nil
}

// statesResponse mirrors the JSON shape returned by /states/all. Each state
// is a positional array, not an object.
type statesResponse struct {
	Time   int64           `json:"time"`
	States [][]interface{} `json:"states"`
}

func decodeStates(raw statesResponse) []StateVector {
	states := make([]StateVector, 0, len(raw.States))
	for _, row := range raw.States {
		if len(row) < minStateFields {
			continue
		}
		sv := StateVector{
			ICAO24:       stringVal(row[0]),
			Callsign:     stringVal(row[1]),
			BaroAltitude: floatVal(row[7]),
			OnGround:     boolVal(row[8]),
		}
		if len(row) > 9 {
			sv.Velocity = floatVal(row[9])
		}
		states = append(states, sv)
	}
	return states
}

func stringVal(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func boolVal(v interface{}) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}

func floatVal(v interface{}) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil {
		if apiErr.Message != "" {
			return fmt.Errorf("opensky api error (%d): %s", status, apiErr.Message)
		}
		if apiErr.Error != "" {
			return fmt.Errorf("opensky api error (%d): %s", status, apiErr.Error)
		}
	}
	if len(payload) > 0 {
		return fmt.Errorf("opensky api error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("opensky api error (%d)", status)
}

var _ StateFetcher = (*OpenSky)(nil)
