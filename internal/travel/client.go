// Package travel resolves the added travel minutes of a proposed
// assignment through a provider cascade: routing API, cache, haversine
// estimate, fixed fallback. Every answer carries its provenance.
package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/dispatch-cli/internal/config"
	"github.com/sells-group/dispatch-cli/internal/geo"
	"github.com/sells-group/dispatch-cli/internal/resilience"
)

// APIClient queries an external routing service for drive-time minutes.
type APIClient struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewAPIClient creates an APIClient from config. The client reports
// unavailable when no base URL is configured.
func NewAPIClient(cfg config.TravelConfig) *APIClient {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("routing-api", "route")

	return &APIClient{
		baseURL: cfg.APIBaseURL,
		apiKey:  cfg.APIKey,
		httpc:   &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   retryCfg,
	}
}

// Available reports whether the client is configured.
func (c *APIClient) Available() bool {
	return c.baseURL != ""
}

type routeResponse struct {
	Minutes float64 `json:"minutes"`
}

// Route returns the drive time in minutes between two points. Transient
// upstream failures are retried with backoff.
func (c *APIClient) Route(ctx context.Context, origin, dest geo.Point) (float64, error) {
	if !c.Available() {
		return 0, eris.New("travel: routing API not configured")
	}

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (float64, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, eris.Wrap(err, "travel: rate limit wait")
		}
		return c.route(ctx, origin, dest)
	})
}

func (c *APIClient) route(ctx context.Context, origin, dest geo.Point) (float64, error) {
	q := url.Values{}
	q.Set("origin_lat", fmt.Sprintf("%.6f", origin.Lat))
	q.Set("origin_lng", fmt.Sprintf("%.6f", origin.Lng))
	q.Set("dest_lat", fmt.Sprintf("%.6f", dest.Lat))
	q.Set("dest_lng", fmt.Sprintf("%.6f", dest.Lng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/route?"+q.Encode(), nil)
	if err != nil {
		return 0, eris.Wrap(err, "travel: build request")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, resilience.NewTransientError(eris.Wrap(err, "travel: route request"), 0)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, eris.Wrap(err, "travel: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("travel: routing API status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return 0, resilience.NewTransientError(err, resp.StatusCode)
		}
		return 0, err
	}

	var rr routeResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return 0, eris.Wrap(err, "travel: decode response")
	}
	if rr.Minutes < 0 {
		return 0, eris.Errorf("travel: negative minutes %f", rr.Minutes)
	}
	return rr.Minutes, nil
}
