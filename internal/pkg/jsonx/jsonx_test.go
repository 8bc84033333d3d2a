package jsonx

import (
	"errors"
	"testing"
)

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `[1, 2]`, `[1, 2]`},
		{"bare fences", "```\n[1, 2]\n```", `[1, 2]`},
		{"language tag", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"unterminated fence", "```json\n[1, 2]", `[1, 2]`},
	}
	for _, tc := range cases {
		if got := StripCodeFences(tc.in); got != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestDecodeWithRepairWellFormed(t *testing.T) {
	var out []int
	repaired, err := DecodeWithRepair("```json\n[1, 2, 3]\n```", &out)
	if err != nil {
		t.Fatalf("DecodeWithRepair: %v", err)
	}
	if repaired != "[1, 2, 3]" || len(out) != 3 {
		t.Fatalf("repaired=%q out=%v", repaired, out)
	}
}

func TestDecodeWithRepairTruncatedArray(t *testing.T) {
	raw := `[{"date": "2026-10-05", "sessions": [{"hours": 2}]}, {"date": "2026-10-06", "sess`
	var out []map[string]any
	if _, err := DecodeWithRepair(raw, &out); err != nil {
		t.Fatalf("DecodeWithRepair: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected the complete first element, got %d", len(out))
	}
	if out[0]["date"] != "2026-10-05" {
		t.Fatalf("unexpected element %v", out[0])
	}
}

func TestDecodeWithRepairTruncatedInsideString(t *testing.T) {
	raw := `[{"a": 1}, {"b": "cut off mid str`
	var out []map[string]any
	if _, err := DecodeWithRepair(raw, &out); err != nil {
		t.Fatalf("DecodeWithRepair: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one element, got %d", len(out))
	}
}

func TestDecodeWithRepairTruncatedObject(t *testing.T) {
	raw := `{"first": [1, 2], "second": [3, 4], "third": [5`
	var out map[string][]int
	if _, err := DecodeWithRepair(raw, &out); err != nil {
		t.Fatalf("DecodeWithRepair: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected two complete members, got %v", out)
	}
	if out["second"][1] != 4 {
		t.Fatalf("unexpected members %v", out)
	}
}

func TestDecodeWithRepairObjectCutAfterKey(t *testing.T) {
	raw := `{"first": [1, 2], "second":`
	var out map[string][]int
	if _, err := DecodeWithRepair(raw, &out); err != nil {
		t.Fatalf("DecodeWithRepair: %v", err)
	}
	if len(out) != 1 || out["first"][0] != 1 {
		t.Fatalf("expected the first member only, got %v", out)
	}
}

func TestDecodeWithRepairHopeless(t *testing.T) {
	var out []int
	for _, raw := range []string{"", "not json", "[", `{"k`} {
		if _, err := DecodeWithRepair(raw, &out); !errors.Is(err, ErrUnrepairable) {
			t.Fatalf("%q: expected ErrUnrepairable, got %v", raw, err)
		}
	}
}

func TestDecodeWithRepairIgnoresTrailingProse(t *testing.T) {
	raw := `[1, 2, 3] hope that helps!`
	var out []int
	if _, err := DecodeWithRepair(raw, &out); err != nil {
		t.Fatalf("DecodeWithRepair: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %v", out)
	}
}
