// agentstats-hook is the hook binary wired into the agent runtime's
// settings. One subcommand per lifecycle point; each reads a JSON event
// from stdin, forwards telemetry to the local AgentStats collector, and
// exits with the code the runtime interprets (0 allow, 2 block).
package main

import (
	"os"

	"github.com/spf13/cobra"

	"agentstats-hooks/internal/dispatch"
	"agentstats-hooks/internal/hook"
	"agentstats-hooks/internal/hookinput"
)

var version = "dev"

var collectorURL string

var rootCmd = &cobra.Command{
	Use:     "agentstats-hook",
	Short:   "Forward agent lifecycle events to a local AgentStats collector",
	Version: version,
	Long: `agentstats-hook reads one JSON hook event from stdin and POSTs a
normalized telemetry event to the AgentStats collector. Delivery is
best-effort: the collector being down never fails the hook.

The pre-tool-use subcommand additionally blocks destructive shell
commands (exit 2) and flags sensitive file access unless
AGENTSTATS_SAFETY=0.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// run wires stdin and the collector client into a hook runner and turns
// its exit code into the process exit status.
func run(fn func(hookinput.Input, *dispatch.Client) int) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		in := hookinput.Read(os.Stdin)
		c := dispatch.NewClient(collectorURL)
		os.Exit(fn(in, c))
	}
}

var preToolUseCmd = &cobra.Command{
	Use:   "pre-tool-use",
	Short: "PreToolUse hook: safety checks, then tool telemetry",
	Run: run(func(in hookinput.Input, c *dispatch.Client) int {
		return hook.RunPreToolUse(in, c, os.Stderr)
	}),
}

var postToolUseCmd = &cobra.Command{
	Use:   "post-tool-use",
	Short: "PostToolUse hook: emit a tool_use event",
	Run:   run(hook.RunPostToolUse),
}

var sessionStartCmd = &cobra.Command{
	Use:   "session-start",
	Short: "SessionStart hook: emit a session_start event",
	Run:   run(hook.RunSessionStart),
}

var sessionEndCmd = &cobra.Command{
	Use:   "session-end",
	Short: "Stop hook: emit a session_end event",
	Run:   run(hook.RunSessionEnd),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&collectorURL, "url", "",
		"collector base URL (default AGENTSTATS_URL or "+dispatch.DefaultBaseURL+")")
	rootCmd.AddCommand(preToolUseCmd, postToolUseCmd, sessionStartCmd, sessionEndCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Unknown subcommand or flag. Hooks must never fail the action
		// they instrument, so allow rather than propagate.
		os.Exit(hook.ExitAllow)
	}
}
