// Package hook implements the per-lifecycle-point hook logic: each Run
// function turns one parsed hook input into telemetry and an exit code.
// Exit codes follow the agent runtime's contract: 0 allows the action,
// 2 denies it. Only the pre-tool-use hook ever denies.
package hook

import (
	"fmt"
	"io"

	"agentstats-hooks/internal/dispatch"
	"agentstats-hooks/internal/event"
	"agentstats-hooks/internal/guard"
	"agentstats-hooks/internal/hookinput"
)

// Exit codes interpreted by the agent runtime.
const (
	ExitAllow = 0
	ExitBlock = 2
)

// toolInputKeys are the tool_input fields forwarded as tool_use metadata.
var toolInputKeys = []string{"command", "file_path", "pattern", "query", "url"}

// RunPreToolUse applies the safety guard, emits any guard telemetry, and
// returns the exit code. Block diagnostics go to errw (stderr in the
// binary). With the guard disabled the hook is telemetry-silent and
// always allows.
func RunPreToolUse(in hookinput.Input, c *dispatch.Client, errw io.Writer) int {
	if !guard.Enabled() {
		return ExitAllow
	}

	sessionID := in.Field("session_id", "")
	toolName := in.Field("tool_name", "")
	project := in.Project()
	command := in.FieldPath("tool_input.command", "")
	filePath := in.FieldPath("tool_input.file_path", "")

	if guard.CheckCommand(toolName, command) {
		c.Send(event.Payload{
			SessionID: sessionID,
			AgentType: event.AgentType,
			EventType: event.TypeError,
			ToolName:  toolName,
			Project:   project,
			Source:    event.Source,
			Status:    "error",
			Metadata: map[string]interface{}{
				"blocked": true,
				"reason":  event.ReasonDestructiveCommand,
				"command": command,
			},
		})
		fmt.Fprintf(errw, "AgentStats: Blocked destructive command: %s\n", command)
		return ExitBlock
	}

	if guard.CheckFilePath(filePath) {
		c.Send(event.Payload{
			SessionID: sessionID,
			AgentType: event.AgentType,
			EventType: event.TypeToolUse,
			ToolName:  toolName,
			Project:   project,
			Source:    event.Source,
			Metadata: map[string]interface{}{
				"security_warning": true,
				"file_path":        filePath,
				"reason":           event.ReasonSensitiveFileAccess,
			},
		})
	}

	return ExitAllow
}

// RunPostToolUse emits a tool_use event carrying the tool_use_id and any
// recognized tool_input fields that are present.
func RunPostToolUse(in hookinput.Input, c *dispatch.Client) int {
	meta := map[string]interface{}{
		"tool_use_id": in.Field("tool_use_id", ""),
	}
	for _, key := range toolInputKeys {
		if val := in.FieldPath("tool_input."+key, ""); val != "" {
			meta[key] = val
		}
	}

	c.Send(event.Payload{
		SessionID: in.Field("session_id", ""),
		AgentType: event.AgentType,
		EventType: event.TypeToolUse,
		ToolName:  in.Field("tool_name", ""),
		Project:   in.Project(),
		Source:    event.Source,
		Metadata:  meta,
	})
	return ExitAllow
}

// RunSessionStart emits a session_start event with the model in use and
// the runtime's startup source (new session, resume, etc.).
func RunSessionStart(in hookinput.Input, c *dispatch.Client) int {
	c.Send(event.Payload{
		SessionID: in.Field("session_id", ""),
		AgentType: event.AgentType,
		EventType: event.TypeSessionStart,
		Project:   in.Project(),
		Model:     in.Field("model", ""),
		Source:    event.Source,
		Metadata: map[string]interface{}{
			"hook_source": in.Field("source", ""),
		},
	})
	return ExitAllow
}

// RunSessionEnd emits a session_end event.
func RunSessionEnd(in hookinput.Input, c *dispatch.Client) int {
	c.Send(event.Payload{
		SessionID: in.Field("session_id", ""),
		AgentType: event.AgentType,
		EventType: event.TypeSessionEnd,
		Project:   in.Project(),
		Source:    event.Source,
	})
	return ExitAllow
}
