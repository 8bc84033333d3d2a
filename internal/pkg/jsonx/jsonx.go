// Package jsonx parses model output that is expected to be JSON but cannot
// be trusted to be well formed: code fences, trailing prose, and truncated
// arrays all show up in practice.
package jsonx

import (
	"encoding/json"
	"errors"
	"strings"
)

var ErrUnrepairable = errors.New("jsonx: unrepairable json")

func StripCodeFences(src string) string {
	s := strings.TrimSpace(src)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	body := lines[1:]
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		body = lines[1 : len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}

// Decode unmarshals raw model text into out after stripping code fences.
func Decode(raw string, out any) error {
	return json.Unmarshal([]byte(StripCodeFences(raw)), out)
}

// DecodeWithRepair unmarshals raw model text into out. If plain decoding
// fails it assumes the payload was truncated mid-stream, trims back to the
// last complete element, re-closes the open structures, and decodes again.
// The repaired form is returned so callers can log what was salvaged.
func DecodeWithRepair(raw string, out any) (string, error) {
	s := StripCodeFences(raw)
	if err := json.Unmarshal([]byte(s), out); err == nil {
		return s, nil
	}
	repaired, ok := repairTruncated(s)
	if !ok {
		return "", ErrUnrepairable
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return "", ErrUnrepairable
	}
	return repaired, nil
}

// repairTruncated walks the payload tracking bracket depth outside strings.
// On truncation it rewinds to the end of the last element that closed at
// depth 1 (a complete member of the top-level array/object) and re-closes
// everything above it.
func repairTruncated(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	open := s[0]
	if open != '[' && open != '{' {
		return "", false
	}

	var stack []byte
	inString := false
	escaped := false
	lastComplete := -1 // index just past the last element completed at depth 1

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
				if len(stack) == 1 {
					lastComplete = i + 1
				}
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[', '{':
			stack = append(stack, c)
		case ']', '}':
			if len(stack) == 0 {
				return "", false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				// Payload closed cleanly; nothing to repair.
				return s[:i+1], true
			}
			if len(stack) == 1 {
				lastComplete = i + 1
			}
		default:
			// Bare scalars (numbers, true/false/null) also complete elements,
			// tracked lazily: a comma at depth 1 means the prior element ended.
			if c == ',' && len(stack) == 1 {
				lastComplete = i
			}
		}
	}

	if len(stack) == 0 || lastComplete <= 0 {
		return "", false
	}

	trimmed := strings.TrimRight(s[:lastComplete], " \t\r\n,")
	if trimmed == "" {
		return "", false
	}
	switch open {
	case '[':
		return trimmed + "]", true
	case '{':
		// An object member is only complete if it ends after a value, not a key.
		// Keys always end with a quote followed by a colon; reject that shape.
		rest := strings.TrimSpace(s[lastComplete:])
		if strings.HasPrefix(rest, ":") {
			idx := strings.LastIndexByte(trimmed, ',')
			if idx <= 0 {
				return "", false
			}
			trimmed = strings.TrimRight(trimmed[:idx], " \t\r\n,")
		}
		return trimmed + "}", true
	}
	return "", false
}
