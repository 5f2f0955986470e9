// Package hookinput reads and queries the JSON object the agent runtime
// writes to a hook's stdin. A hook that cannot parse its input must never
// crash or block the action it instruments, so every accessor falls back
// to a default instead of returning an error.
package hookinput

import (
	"io"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// Input holds the raw stdin bytes of one hook invocation.
// Read-only after construction.
type Input struct {
	raw []byte
}

// Read consumes r to EOF and wraps the bytes as an Input. Malformed or
// empty JSON is not an error — all field lookups on such an Input
// return their defaults.
func Read(r io.Reader) Input {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Input{}
	}
	if !gjson.ValidBytes(raw) {
		return Input{}
	}
	return Input{raw: raw}
}

// FromJSON wraps a JSON document directly. Used by tests.
func FromJSON(raw string) Input {
	if !gjson.Valid(raw) {
		return Input{}
	}
	return Input{raw: []byte(raw)}
}

// Field returns the string form of a top-level field. Non-string scalars
// are stringified; absent or null values yield def.
func (in Input) Field(key, def string) string {
	return in.lookup(key, def)
}

// FieldPath walks nested objects by dot-separated segments
// (e.g. "tool_input.command"). Returns def as soon as any intermediate
// value is not an object or the leaf is absent/null.
func (in Input) FieldPath(path, def string) string {
	return in.lookup(path, def)
}

func (in Input) lookup(path, def string) string {
	res := gjson.GetBytes(in.raw, path)
	if !res.Exists() || res.Type == gjson.Null {
		return def
	}
	return res.String()
}

// Project derives the project name from the cwd field: the final path
// segment, or "" when cwd is absent or empty.
func (in Input) Project() string {
	cwd := in.Field("cwd", "")
	if cwd == "" {
		return ""
	}
	base := filepath.Base(cwd)
	if base == "/" || base == "." {
		return ""
	}
	return base
}
