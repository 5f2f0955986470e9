// Package dispatch delivers telemetry payloads to the AgentStats
// collector. Delivery is best-effort: the POST runs on its own
// goroutine, the caller waits a bounded time for it to leave the
// process, and every failure is absorbed.
package dispatch

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"agentstats-hooks/internal/event"
)

// DefaultBaseURL is the collector endpoint when AGENTSTATS_URL is unset.
const DefaultBaseURL = "http://127.0.0.1:3141"

const (
	// requestTimeout bounds the outbound POST itself.
	requestTimeout = 5 * time.Second
	// joinTimeout bounds how long the hook process waits for the POST
	// before proceeding to exit. Shorter than requestTimeout: the hook
	// must not slow the monitored tool down, but the request needs a
	// real chance to leave the process first.
	joinTimeout = 2 * time.Second
)

// Client posts events to a collector base URL.
type Client struct {
	baseURL string
	http    *http.Client
	join    time.Duration
}

// NewClient returns a Client for the given base URL. Empty baseURL
// falls back to AGENTSTATS_URL, then to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("AGENTSTATS_URL")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
		join:    joinTimeout,
	}
}

// Send POSTs p to <base>/api/events on a background goroutine and waits
// at most the join bound for it to finish. The goroutine's error is
// deliberately discarded: an unreachable collector must never surface
// to the hook's caller, its stdout, or its stderr. If the join bound
// expires the request keeps running detached, capped by the request
// timeout; process exit may cut it short, which is acceptable for
// best-effort delivery.
func (c *Client) Send(p event.Payload) {
	done := make(chan error, 1)
	go func() {
		done <- c.post(p)
	}()

	select {
	case err := <-done:
		_ = err // best-effort: delivery failures are not reported
	case <-time.After(c.join):
	}
}

func (c *Client) post(p event.Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	resp, err := c.http.Post(c.baseURL+"/api/events", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	// Any status code is terminal; drain so the connection can be reused.
	_, err = io.Copy(io.Discard, resp.Body)
	return err
}
