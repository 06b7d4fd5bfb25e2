// Package parsers extracts structured fields from model-produced tool call
// arguments. Model output is untrusted: everything here is best-effort and
// bounded, malformed input degrades to zero values instead of failing a turn.
package parsers

import (
	"encoding/json"
	"strings"
)

// maxArgsLen guards against pathological argument payloads.
const maxArgsLen = 8 * 1024

// EscalateArgs are the arguments of a CompleteOrEscalate call.
type EscalateArgs struct {
	Cancel bool   `json:"cancel"`
	Reason string `json:"reason"`
}

// HandoffArgs are the arguments of a specialized-assistant handoff request.
// Only Request is common to all four; the date/location fields are present
// where the request type defines them.
type HandoffArgs struct {
	Request      string `json:"request"`
	Location     string `json:"location"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	CheckinDate  string `json:"checkin_date"`
	CheckoutDate string `json:"checkout_date"`
}

// ParseEscalateArgs reads a CompleteOrEscalate payload. Never fails: a broken
// payload yields the zero value.
func ParseEscalateArgs(raw string) EscalateArgs {
	var args EscalateArgs
	unmarshalLenient(raw, &args)
	return args
}

// ParseHandoffArgs reads a handoff request payload. Never fails: a broken
// payload yields the zero value.
func ParseHandoffArgs(raw string) HandoffArgs {
	var args HandoffArgs
	unmarshalLenient(raw, &args)
	return args
}

// unmarshalLenient tolerates the usual model quirks: surrounding whitespace
// and markdown code fences around the JSON object.
func unmarshalLenient(raw string, out any) {
	s := strings.TrimSpace(raw)
	if s == "" || len(s) > maxArgsLen {
		return
	}
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	// ignore errors, fields keep their zero values
	_ = json.Unmarshal([]byte(s), out)
}
