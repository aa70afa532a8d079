package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/aniayu/storefront-go/internal/middleware"
)

const HeaderGuestID = "X-Guest-Id"

// errUpstreamFailure marks 5xx responses so the breaker counts them without
// hiding the response from the caller.
var errUpstreamFailure = errors.New("upstream failure")

type Client struct {
	Name    string
	BaseURL *url.URL
	HTTP    *http.Client

	breaker *gobreaker.CircuitBreaker[*http.Response]
}

type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

func NewClient(name string, baseURL string, httpClient *http.Client, bs BreakerSettings) *Client {
	u, err := url.Parse(baseURL)
	if err != nil {
		// Fail fast: config error
		panic(fmt.Sprintf("invalid %s base url %q: %v", name, baseURL, err))
	}
	if bs.MaxFailures == 0 {
		bs.MaxFailures = 5
	}

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    name,
		Timeout: bs.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bs.MaxFailures
		},
	})

	return &Client{Name: name, BaseURL: u, HTTP: httpClient, breaker: cb}
}

func (c *Client) Do(ctx context.Context, method, path, rawQuery string, body io.Reader, inHeaders http.Header) (*http.Response, error) {
	u := c.BaseURL.JoinPath(path)
	u.RawQuery = rawQuery

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	copyHeaders(req.Header, inHeaders)

	// Ensure correlation id propagated downstream
	if cid := middleware.GetCorrelationID(ctx); cid != "" {
		req.Header.Set(middleware.HeaderCorrelationID, cid)
	}
	if gid := GuestIDFrom(ctx); gid != "" {
		req.Header.Set(HeaderGuestID, gid)
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.HTTP.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errUpstreamFailure
		}
		return resp, nil
	})
	if errors.Is(err, errUpstreamFailure) {
		return resp, nil
	}
	if err != nil {
		return nil, &NetworkError{Op: method + " " + path, Err: err}
	}
	return resp, nil
}

// doJSON sends in (when non-nil) as JSON and decodes a 2xx body into out (when non-nil).
// Non-2xx responses are returned as *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Accept", "application/json")

	rawQuery := ""
	if len(query) > 0 {
		rawQuery = query.Encode()
	}

	resp, err := c.Do(ctx, method, path, rawQuery, body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		if isHopByHopHeader(k) {
			continue
		}
		// Host is not a header key here (it's req.Host), but keep this rule anyway
		if strings.EqualFold(k, "Host") {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// Hop-by-hop headers (RFC 7230)
func isHopByHopHeader(k string) bool {
	switch http.CanonicalHeaderKey(k) {
	case "Connection", "Proxy-Connection", "Keep-Alive",
		"Proxy-Authenticate", "Proxy-Authorization",
		"Te", "Trailer", "Transfer-Encoding", "Upgrade":
		return true
	default:
		return false
	}
}
