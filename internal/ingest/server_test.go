package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"agentstats-hooks/internal/store"
)

// mockStore captures indexed documents for assertions.
type mockStore struct {
	mu   sync.Mutex
	docs []store.Document
	fail bool
}

func (m *mockStore) Index(ctx context.Context, doc store.Document) error {
	if m.fail {
		return errors.New("store unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, doc)
	return nil
}

func (m *mockStore) Close() error { return nil }

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHandleEvents_Accepts(t *testing.T) {
	t.Parallel()

	ms := &mockStore{}
	ts := httptest.NewServer(New(ms).Handler())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/events", `{
		"session_id": "s1",
		"agent_type": "claude_code",
		"event_type": "tool_use",
		"tool_name": "Bash",
		"project": "proj",
		"source": "hook",
		"metadata": {"command": "ls"}
	}`)

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != "accepted" {
		t.Errorf("status field = %v, want accepted", body["status"])
	}
	if body["id"] == "" || body["id"] == nil {
		t.Error("response should carry the document id")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.docs) != 1 {
		t.Fatalf("expected 1 doc, got %d", len(ms.docs))
	}
	doc := ms.docs[0]
	if doc.EventType != "tool_use" || doc.SessionID != "s1" || doc.Project != "proj" {
		t.Errorf("doc = %+v", doc)
	}
}

func TestHandleEvents_Rejections(t *testing.T) {
	t.Parallel()

	ms := &mockStore{}
	ts := httptest.NewServer(New(ms).Handler())
	defer ts.Close()

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"invalid JSON", "{not json", http.StatusBadRequest},
		{"missing event_type", `{"session_id": "s1"}`, http.StatusBadRequest},
		{"oversized body", `{"event_type": "tool_use", "pad": "` + strings.Repeat("x", maxBodyLen) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/events", tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	if len(ms.docs) != 0 {
		t.Errorf("rejected requests should not index, got %d docs", len(ms.docs))
	}
}

func TestHandleEvents_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(New(&mockStore{}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/events")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

func TestHandleEvents_StoreFailure(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(New(&mockStore{fail: true}).Handler())
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/events", `{"event_type": "tool_use"}`)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestHandleEvents_DepthLimit(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(New(&mockStore{}).Handler())
	defer ts.Close()

	deep := strings.Repeat(`{"a":`, maxJSONDepth+1) + "1" + strings.Repeat("}", maxJSONDepth+1)
	resp := postJSON(t, ts.URL+"/api/events", deep)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleEvents_OnIngestCallback(t *testing.T) {
	t.Parallel()

	srv := New(&mockStore{})

	var mu sync.Mutex
	var got []IngestEvent
	srv.SetOnIngest(func(evt IngestEvent) {
		mu.Lock()
		got = append(got, evt)
		mu.Unlock()
	})

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body := `{"event_type": "session_start", "session_id": "s1", "project": "proj"}`
	resp := postJSON(t, ts.URL+"/api/events", body)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("expected 1 callback, got %d", len(got))
	}
	evt := got[0]
	if evt.EventType != "session_start" || evt.SessionID != "s1" || evt.Project != "proj" {
		t.Errorf("callback event = %+v", evt)
	}
	if evt.BodySize != len(body) {
		t.Errorf("BodySize = %d, want %d", evt.BodySize, len(body))
	}
	if evt.ReceivedAt.IsZero() {
		t.Error("ReceivedAt should be set")
	}
}

func TestHandleStats(t *testing.T) {
	t.Parallel()

	srv := New(&mockStore{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	postJSON(t, ts.URL+"/api/events", `{"event_type": "tool_use"}`)
	postJSON(t, ts.URL+"/api/events", `not json`)

	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatalf("GET /stats: %v", err)
	}
	defer resp.Body.Close()

	var stats map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats["ingested"] != float64(1) {
		t.Errorf("ingested = %v, want 1", stats["ingested"])
	}
	if stats["errors"] != float64(1) {
		t.Errorf("errors = %v, want 1", stats["errors"])
	}
	if stats["last_event"] == nil {
		t.Error("last_event should be set after an ingest")
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(New(&mockStore{}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status field = %v, want healthy", body["status"])
	}
}

func TestCheckJSONDepth(t *testing.T) {
	t.Parallel()

	if err := checkJSONDepth([]byte(`{"a": {"b": [1, 2, {"c": 3}]}}`), 10); err != nil {
		t.Errorf("shallow document should pass: %v", err)
	}

	deep := bytes.Repeat([]byte(`[`), 11)
	if err := checkJSONDepth(deep, 10); err == nil {
		t.Error("deep document should be rejected")
	}
}
