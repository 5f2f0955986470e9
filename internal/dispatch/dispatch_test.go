package dispatch

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"agentstats-hooks/internal/event"
)

// newTestClient returns a Client pointed at url with a short join bound
// so tests stay fast.
func newTestClient(url string, join time.Duration) *Client {
	return &Client{
		baseURL: url,
		http:    &http.Client{Timeout: requestTimeout},
		join:    join,
	}
}

func TestSend_PostsPayload(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var gotPath, gotContentType string
	var gotBody []byte

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotBody = body
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL, joinTimeout)
	c.Send(event.Payload{
		SessionID: "s1",
		AgentType: event.AgentType,
		EventType: event.TypeToolUse,
		ToolName:  "Bash",
		Project:   "proj",
		Source:    event.Source,
	})

	mu.Lock()
	defer mu.Unlock()

	if gotPath != "/api/events" {
		t.Errorf("path = %q, want /api/events", gotPath)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}

	var p event.Payload
	if err := json.Unmarshal(gotBody, &p); err != nil {
		t.Fatalf("body is not valid JSON: %v", err)
	}
	if p.SessionID != "s1" || p.EventType != "tool_use" || p.Project != "proj" {
		t.Errorf("payload = %+v", p)
	}
}

func TestSend_SilentOnFailure(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	// Non-2xx response: absorbed.
	c := newTestClient(ts.URL, joinTimeout)
	c.Send(event.Payload{EventType: event.TypeSessionEnd})

	// Connection refused: absorbed.
	ts.Close()
	c.Send(event.Payload{EventType: event.TypeSessionEnd})
}

func TestSend_BoundedWait(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release // hang until the test finishes
	}))
	defer func() {
		close(release)
		ts.Close()
	}()

	join := 200 * time.Millisecond
	c := newTestClient(ts.URL, join)

	start := time.Now()
	c.Send(event.Payload{EventType: event.TypeToolUse})
	elapsed := time.Since(start)

	if elapsed < join {
		t.Errorf("Send returned after %v, before the %v join bound", elapsed, join)
	}
	if elapsed > join+time.Second {
		t.Errorf("Send blocked for %v, join bound is %v", elapsed, join)
	}
}

func TestNewClient_BaseURL(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		env  string
		want string
	}{
		{"explicit argument wins", "http://127.0.0.1:9999", "http://ignored:1", "http://127.0.0.1:9999"},
		{"env fallback", "", "http://127.0.0.1:8888", "http://127.0.0.1:8888"},
		{"default", "", "", DefaultBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("AGENTSTATS_URL", tt.env)
			c := NewClient(tt.arg)
			if c.baseURL != tt.want {
				t.Errorf("baseURL = %q, want %q", c.baseURL, tt.want)
			}
		})
	}
}
