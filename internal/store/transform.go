package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"agentstats-hooks/internal/event"
)

// PayloadToDocument transforms a wire-format event payload into a
// Meilisearch-ready Document with derived fields for search and
// filtering. Hooks do not timestamp their events, so the collector
// stamps the receipt time.
func PayloadToDocument(p event.Payload, receivedAt time.Time) Document {
	doc := Document{
		ID:            uuid.New().String(),
		EventType:     p.EventType,
		Timestamp:     receivedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		TimestampUnix: receivedAt.Unix(),
		SessionID:     p.SessionID,
		AgentType:     p.AgentType,
		ToolName:      p.ToolName,
		Project:       p.Project,
		Status:        p.Status,
		Model:         p.Model,
		Metadata:      p.Metadata,
	}

	// Lift guard signals out of metadata so they are filterable.
	if b, ok := extractBool(p.Metadata, "blocked"); ok {
		doc.Blocked = b
	}
	if w, ok := extractBool(p.Metadata, "security_warning"); ok {
		doc.SecurityWarning = w
	}
	if r, ok := extractString(p.Metadata, "reason"); ok {
		doc.Reason = r
	}

	// Serialize the metadata map to a flat JSON string for full-text
	// search. Meilisearch indexes string fields — nested maps are not
	// traversed.
	if b, err := json.Marshal(p.Metadata); err == nil {
		doc.MetadataFlat = string(b)
	}

	return doc
}

// extractString retrieves a string value from a JSON-unmarshaled map.
// Returns ("", false) if the key is missing or the value is not a string.
func extractString(data map[string]interface{}, key string) (string, bool) {
	v, ok := data[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// extractBool retrieves a boolean value from a JSON-unmarshaled map.
func extractBool(data map[string]interface{}, key string) (bool, bool) {
	v, ok := data[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
