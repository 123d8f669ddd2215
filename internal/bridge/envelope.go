package bridge

import (
	"encoding/json"
	"time"
)

// FileInfo is one entry of a directory listing.
type FileInfo struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	IsDirectory  bool   `json:"isDirectory"`
	LastModified int64  `json:"lastModified"` // unix milliseconds
}

func (f FileInfo) ModTime() time.Time {
	return time.UnixMilli(f.LastModified)
}

// Result is a decoded envelope: either a payload or the host's failure reason.
type Result[T any] struct {
	OK     bool
	Value  T
	Reason string
}

// Decode parses a host envelope. When field is non-empty and the envelope is
// successful, that member is decoded into the payload. A string that is not a
// valid envelope decodes as a failure.
func Decode[T any](raw, field string) Result[T] {
	var env map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Result[T]{Reason: "malformed host response: " + err.Error()}
	}
	var ok bool
	if b, has := env["success"]; has {
		_ = json.Unmarshal(b, &ok)
	}
	if !ok {
		reason := "unknown host error"
		if b, has := env["error"]; has {
			var s string
			if json.Unmarshal(b, &s) == nil && s != "" {
				reason = s
			}
		}
		return Result[T]{Reason: reason}
	}
	res := Result[T]{OK: true}
	if field == "" {
		return res
	}
	b, has := env[field]
	if !has {
		return res
	}
	if err := json.Unmarshal(b, &res.Value); err != nil {
		return Result[T]{Reason: "malformed " + field + ": " + err.Error()}
	}
	return res
}

// Success encodes a successful envelope, optionally carrying one payload field.
func Success(field string, value any) string {
	env := map[string]any{"success": true}
	if field != "" {
		env[field] = value
	}
	b, err := json.Marshal(env)
	if err != nil {
		return Failure(err)
	}
	return string(b)
}

// Failure encodes a failed envelope with the error text as reason.
func Failure(err error) string {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	b, _ := json.Marshal(map[string]any{"success": false, "error": msg})
	return string(b)
}
