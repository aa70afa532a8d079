package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultProbeTimeout = 2 * time.Second

type HealthProbe struct {
	Name    string
	Client  *Client
	Path    string
	Timeout time.Duration
}

type HealthResult struct {
	Name       string `json:"name"`
	OK         bool   `json:"ok"`
	StatusCode int    `json:"statusCode,omitempty"`
	// Reported is the "status" field of the upstream's own health document, if it sent one.
	Reported  string `json:"reported,omitempty"`
	LatencyMS int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

func CheckHealth(ctx context.Context, probe HealthProbe) HealthResult {
	timeout := probe.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	res := HealthResult{Name: probe.Name}
	resp, err := probe.Client.Do(ctx, http.MethodGet, probe.Path, "", nil, http.Header{})
	res.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()

	res.StatusCode = resp.StatusCode
	res.OK = resp.StatusCode >= 200 && resp.StatusCode < 300

	var doc Health
	if b, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && json.Unmarshal(b, &doc) == nil {
		res.Reported = doc.Status
	}
	return res
}

// CheckAll runs every probe concurrently. Results keep the order of probes.
func CheckAll(ctx context.Context, probes []HealthProbe) []HealthResult {
	results := make([]HealthResult, len(probes))
	var g errgroup.Group
	for i := range probes {
		g.Go(func() error {
			results[i] = CheckHealth(ctx, probes[i])
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Health fetches the API's own health document.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.doJSON(ctx, http.MethodGet, "/health", nil, nil, &out)
	return out, err
}
