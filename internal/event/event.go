// Package event defines the AgentStats telemetry wire format.
// The contract between the hooks and the collector is the JSON schema,
// not Go types — the collector re-parses into its own document type.
package event

// Agent and source identifiers stamped on every payload.
const (
	AgentType = "claude_code"
	Source    = "hook"
)

// Event types. Fixed per hook script; only the safety guard's block
// path overrides to TypeError.
const (
	TypeToolUse      = "tool_use"
	TypeSessionStart = "session_start"
	TypeSessionEnd   = "session_end"
	TypeError        = "error"
)

// Reasons attached to guard-generated metadata.
const (
	ReasonDestructiveCommand  = "destructive_command"
	ReasonSensitiveFileAccess = "sensitive_file_access"
)

// Payload is one telemetry event POSTed to the collector.
// Built once per hook invocation and discarded after the send attempt.
type Payload struct {
	SessionID string                 `json:"session_id"`
	AgentType string                 `json:"agent_type"`
	EventType string                 `json:"event_type"`
	ToolName  string                 `json:"tool_name,omitempty"`
	Project   string                 `json:"project"`
	Source    string                 `json:"source"`
	Status    string                 `json:"status,omitempty"`
	Model     string                 `json:"model,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}
