// Package orchestra is the host-side toolkit: an HTTP client for one device,
// a conductor broadcasting notes to a fleet, and fleet status collection.
package orchestra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"lightorchestra-go/types"
)

// DefaultTimeout keeps playback requests short: the orchestra stays in sync
// better when a slow device is skipped than when everyone waits for it.
const DefaultTimeout = 200 * time.Millisecond

// Client talks to one device's HTTP API. Host is an IP or host:port.
type Client struct {
	host       string
	httpClient *http.Client
}

// NewClient creates a client with the given per-request timeout
// (DefaultTimeout when zero).
func NewClient(host string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		host:       host,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Host returns the device address this client targets.
func (c *Client) Host() string { return c.host }

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "http://" + c.host + path
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	slog.Debug("device request", "method", req.Method, "url", req.URL.String())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (%d)", req.Method, req.URL.Path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// Sensor fetches the latest light reading.
func (c *Client) Sensor(ctx context.Context) (types.LightReading, error) {
	var r types.LightReading
	err := c.get(ctx, "/sensor", &r)
	return r, err
}

// Health fetches the device health snapshot.
func (c *Client) Health(ctx context.Context) (types.HealthInfo, error) {
	var h types.HealthInfo
	err := c.get(ctx, "/health", &h)
	return h, err
}

// Tone plays one note. duty <= 0 falls back to the device default.
func (c *Client) Tone(ctx context.Context, freqHz uint32, ms uint32, duty float64) error {
	payload := map[string]any{"freq": freqHz, "ms": ms}
	if duty > 0 {
		payload["duty"] = duty
	}
	return c.post(ctx, "/tone", payload, nil)
}

// Melody queues a note sequence on the device.
func (c *Client) Melody(ctx context.Context, req types.MelodyRequest) error {
	return c.post(ctx, "/melody", req, nil)
}

// Cancel stops any active playback.
func (c *Client) Cancel(ctx context.Context) error {
	return c.post(ctx, "/cancel", struct{}{}, nil)
}

// SetFollow switches the light-follow loop on or off.
func (c *Client) SetFollow(ctx context.Context, follow bool) error {
	return c.post(ctx, "/mode", types.ModeRequest{Follow: follow}, nil)
}
