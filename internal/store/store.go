package store

import "context"

// Document is the Meilisearch-ready representation of a telemetry event.
// Fields are chosen for optimal search, filter, and sort operations.
type Document struct {
	ID              string                 `json:"id"`
	EventType       string                 `json:"event_type"`
	Timestamp       string                 `json:"timestamp"`
	TimestampUnix   int64                  `json:"timestamp_unix"`
	SessionID       string                 `json:"session_id,omitempty"`
	AgentType       string                 `json:"agent_type,omitempty"`
	ToolName        string                 `json:"tool_name,omitempty"`
	Project         string                 `json:"project,omitempty"`
	Status          string                 `json:"status,omitempty"`
	Model           string                 `json:"model,omitempty"`
	Blocked         bool                   `json:"blocked"`
	SecurityWarning bool                   `json:"security_warning"`
	Reason          string                 `json:"reason,omitempty"`
	MetadataFlat    string                 `json:"metadata_flat"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// EventStore is the storage port for persisting event documents.
// Implementations must be safe for concurrent use.
type EventStore interface {
	// Index persists a single document. Returns an error if the store
	// is unreachable or the operation fails.
	Index(ctx context.Context, doc Document) error

	// Close releases any resources held by the store.
	Close() error
}
