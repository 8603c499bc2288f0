package shared

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf)

	logger.Info("hello", "key", "value")

	out := buf.String()
	if !strings.Contains(out, "hello") || !strings.Contains(out, "key") {
		t.Errorf("unexpected log output: %q", out)
	}
}

func TestGenerateID(t *testing.T) {
	a := GenerateID()
	b := GenerateID()

	if a == "" || b == "" {
		t.Fatal("expected non-empty IDs")
	}
	if a == b {
		t.Error("expected unique IDs")
	}
}

func TestGenerateState(t *testing.T) {
	state, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState: %v", err)
	}
	if len(state) != 32 {
		t.Errorf("expected 32 hex characters, got %d", len(state))
	}

	other, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState: %v", err)
	}
	if state == other {
		t.Error("expected unique state tokens")
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]string{"key": "value"}

	compact, err := MarshalJSON(data, false)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(compact) != `{"key":"value"}` {
		t.Errorf("unexpected compact output %q", compact)
	}

	pretty, err := MarshalJSON(data, true)
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if !strings.Contains(string(pretty), "\n") {
		t.Errorf("expected indented output, got %q", pretty)
	}
}

func TestValidateJSON(t *testing.T) {
	if err := ValidateJSON([]byte(`{"ok":true}`)); err != nil {
		t.Errorf("expected valid JSON, got %v", err)
	}
	if err := ValidateJSON([]byte(`{nope`)); err == nil {
		t.Error("expected an error for invalid JSON")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name string
		ms   int
		want string
	}{
		{"Zero", 0, "0:00"},
		{"Under A Minute", 59000, "0:59"},
		{"Exact Minute", 60000, "1:00"},
		{"Typical Track", 200000, "3:20"},
		{"Over Ten Minutes", 754000, "12:34"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.ms); got != tt.want {
				t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
			}
		})
	}
}

func TestVisibilityString(t *testing.T) {
	if got := VisibilityString(true); got != "Public" {
		t.Errorf("VisibilityString(true) = %q", got)
	}
	if got := VisibilityString(false); got != "Private" {
		t.Errorf("VisibilityString(false) = %q", got)
	}
}
