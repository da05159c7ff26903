package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotorops/fleetmx/internal/normalize"
	"go.uber.org/zap"
)

// skyrouterTimeLayout is the feed's date+time stamp (YYYYMMDD HHMMSS, UTC).
const skyrouterTimeLayout = "20060102 150405"

// Field positions within one FlightTracking record.
const (
	srFieldReportType   = 2
	srFieldRegistration = 6
	srFieldDate         = 7
	srFieldTime         = 8
	srFieldLatitude     = 9
	srFieldLongitude    = 10
	srFieldAltitude     = 11
	srFieldVelocity     = 12
	srFieldHeading      = 13
	srMinFields         = 14
)

// reportStatus maps the feed's report-type codes to operator-facing status
// text. Unknown codes pass through unchanged.
var reportStatus = map[string]string{
	"POS": "ACTIVE",
	"QPS": "ACTIVE",
	"HBT": "ACTIVE",
	"BEA": "ACTIVE",
	"TOF": "TAKE-OFF",
	"LAN": "LANDING",
	"OGA": "DEPARTED",
	"IGA": "ARRIVED",
}

// SkyRouterClient pulls the FlightTracking feed from a SkyRouter Data
// Exchange endpoint. One request returns every position report since the
// previous pull; the newest record per tail wins.
type SkyRouterClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *zap.SugaredLogger
	now        func() time.Time
}

// NewSkyRouterClient creates a feed client. Credentials are passed in by
// the caller (read from the environment, never from config files).
func NewSkyRouterClient(baseURL, username, password string, timeout time.Duration, logger *zap.SugaredLogger) *SkyRouterClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SkyRouterClient{
		baseURL:    baseURL,
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
}

// Positions fetches and parses the feed, filtered to the fleet's tails.
// Returns an error only when the feed itself could not be fetched.
func (c *SkyRouterClient) Positions(ctx context.Context, fleet map[string]string) (map[string]*Record, error) {
	text, err := c.fetchFeed(ctx)
	if err != nil {
		return nil, err
	}

	all := c.ParseFeed(text)

	result := make(map[string]*Record, len(fleet))
	for tail := range fleet {
		if rec, ok := all[tail]; ok {
			result[tail] = rec
		}
	}
	return result, nil
}

func (c *SkyRouterClient) fetchFeed(ctx context.Context) (string, error) {
	q := url.Values{}
	q.Set("username", c.username)
	q.Set("password", c.password)
	q.Set("datatype", "FlightTracking")
	q.Set("option", "EverythingSinceLastRequest")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching skyrouter feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("skyrouter feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	text := string(body)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("skyrouter feed returned empty response")
	}

	// Common failure mode: an HTML login or error page instead of records.
	head := strings.ToLower(strings.TrimSpace(text))
	if len(head) > 200 {
		head = head[:200]
	}
	if strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html") || strings.Contains(head, "login") {
		return "", fmt.Errorf("skyrouter feed returned HTML (wrong endpoint or auth failure)")
	}

	return text, nil
}

// ParseFeed converts raw feed text into the newest record per tail.
func (c *SkyRouterClient) ParseFeed(text string) map[string]*Record {
	now := c.now()
	records := make(map[string]*Record)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		rec := parseFeedRecord(line, now)
		if rec == nil {
			continue
		}

		existing, ok := records[rec.Tail]
		if !ok || rec.Timestamp.After(existing.Timestamp) {
			records[rec.Tail] = rec
		}
	}

	return records
}

// parseFeedRecord parses one comma-separated FlightTracking record.
// Returns nil for records without a registration or position.
func parseFeedRecord(line string, now time.Time) *Record {
	fields := strings.Split(line, ",")
	if len(fields) < srMinFields {
		return nil
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	tail := normalize.TailKey(fields[srFieldRegistration])
	lat := normalize.ParseNumber(fields[srFieldLatitude])
	lon := normalize.ParseNumber(fields[srFieldLongitude])
	if tail == "" || lat == nil || lon == nil {
		return nil
	}

	reportType := strings.ToUpper(fields[srFieldReportType])
	status, ok := reportStatus[reportType]
	if !ok {
		status = reportType
	}

	rec := &Record{
		Tail:        tail,
		Latitude:    lat,
		Longitude:   lon,
		AltitudeFt:  normalize.ParseNumber(fields[srFieldAltitude]),
		GroundSpeed: normalize.ParseNumber(fields[srFieldVelocity]),
		Track:       normalize.ParseNumber(fields[srFieldHeading]),
		Status:      status,
		Timestamp:   now,
	}

	stamp := fields[srFieldDate] + " " + fields[srFieldTime]
	if ts, err := time.Parse(skyrouterTimeLayout, stamp); err == nil {
		rec.Timestamp = ts
		age := now.Sub(ts).Seconds()
		if age >= 0 {
			rec.AgeSeconds = &age
		}
	}

	return rec
}
