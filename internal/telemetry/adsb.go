package telemetry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ADSBClient fetches per-aircraft state from an ADS-B aggregator API.
// Aggregator installations expose the per-ICAO lookup under slightly
// different paths, so each fetch walks an ordered list of candidate
// endpoints and keeps the first that answers.
type ADSBClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewADSBClient creates a client for the given aggregator host.
func NewADSBClient(baseURL, userAgent string, timeout time.Duration, logger *zap.SugaredLogger) *ADSBClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ADSBClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// candidatePaths are tried in order for each ICAO lookup.
func (c *ADSBClient) candidatePaths(icaoHex string) []string {
	return []string{
		c.baseURL + "/v2/icao/" + icaoHex,
		c.baseURL + "/api/v2/icao/" + icaoHex,
		c.baseURL + "/api/icao/" + icaoHex,
	}
}

// Positions fetches every fleet aircraft in parallel, bounded by fleet
// size. Per-tail failures are logged at debug and omitted from the result.
func (c *ADSBClient) Positions(ctx context.Context, fleet map[string]string) (map[string]*Record, error) {
	var mu sync.Mutex
	var wg sync.WaitGroup
	result := make(map[string]*Record, len(fleet))

	for tail, icao := range fleet {
		icao = strings.ToLower(strings.TrimSpace(icao))
		if icao == "" {
			continue
		}

		wg.Add(1)
		go func(tail, icao string) {
			defer wg.Done()

			rec, err := c.fetchOne(ctx, tail, icao)
			if err != nil {
				if c.logger != nil {
					c.logger.Debugf("adsb: no usable fix for %s (%s): %v", tail, icao, err)
				}
				return
			}

			mu.Lock()
			result[tail] = rec
			mu.Unlock()
		}(tail, icao)
	}

	wg.Wait()
	return result, nil
}

// fetchOne tries the candidate endpoints in order and normalizes the first
// successful payload. Exhausting every candidate is reported as an error so
// the caller can count the miss.
func (c *ADSBClient) fetchOne(ctx context.Context, tail, icaoHex string) (*Record, error) {
	var lastErr error

	for _, url := range c.candidatePaths(icaoHex) {
		payload, err := c.get(ctx, url)
		if err != nil {
			lastErr = err
			continue
		}

		rec := NormalizeADSBPayload(payload)
		if rec == nil {
			lastErr = fmt.Errorf("payload from %s has no position", url)
			continue
		}
		rec.Tail = tail
		return rec, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate endpoints")
	}
	return nil, lastErr
}

func (c *ADSBClient) get(ctx context.Context, url string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	return payload, nil
}
