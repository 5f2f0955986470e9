// Package guard implements the pre-execution safety checks: blocking
// destructive shell commands and flagging access to sensitive files.
//
// Matching is pattern-based, not a shell parse. Obfuscated destructive
// commands can slip through and quoted look-alikes can match; the guard
// is a tripwire, not a sandbox.
package guard

import (
	"os"
	"regexp"
)

// ShellTool is the tool name whose input carries a shell command.
const ShellTool = "Bash"

// destructiveRe matches rm with a force flag (-f, any short-flag bundle
// containing f, or --force) targeting /, ~, or $HOME as a whole path
// token. Flags may repeat before the target. Substring match: not
// anchored to command boundaries, so `echo "rm -rf /"` also matches.
var destructiveRe = regexp.MustCompile(`rm\s+(-[a-zA-Z]*f[a-zA-Z]*\s+|--force\s+)*(/|~|\$HOME)(\s|$)`)

// sensitiveRe matches file extensions that commonly hold credentials.
var sensitiveRe = regexp.MustCompile(`\.(env|pem|key|credentials|secret)$`)

// Enabled reports whether the safety checks should run.
// AGENTSTATS_SAFETY=0 disables them; any other value, including unset,
// leaves them on.
func Enabled() bool {
	return os.Getenv("AGENTSTATS_SAFETY") != "0"
}

// CheckCommand reports whether command is a destructive shell invocation
// that must be blocked. Only commands run through the shell tool are
// inspected.
func CheckCommand(tool, command string) bool {
	if tool != ShellTool || command == "" {
		return false
	}
	return destructiveRe.MatchString(command)
}

// CheckFilePath reports whether path ends in a sensitive extension.
// A match produces a warning event, never a block.
func CheckFilePath(path string) bool {
	if path == "" {
		return false
	}
	return sensitiveRe.MatchString(path)
}
