package fallback

import (
	"errors"
	"testing"
)

func TestStringOr(t *testing.T) {
	got := StringOr("Test", func() (string, error) { return "value", nil }, "fallback")
	if got != "value" {
		t.Errorf("got %q, want the produced value", got)
	}

	got = StringOr("Test", func() (string, error) { return "", errors.New("boom") }, "fallback")
	if got != "fallback" {
		t.Errorf("got %q, want the fallback on error", got)
	}

	got = StringOr("Test", func() (string, error) { return "   ", nil }, "fallback")
	if got != "fallback" {
		t.Errorf("got %q, want the fallback on blank output", got)
	}
}

func TestDoSwallowsErrors(t *testing.T) {
	ran := false
	Do("Test", func() error {
		ran = true
		return errors.New("boom")
	})
	if !ran {
		t.Error("operation did not run")
	}
}

func TestSafeString(t *testing.T) {
	if got := SafeString("  hello  ", "d"); got != "hello" {
		t.Errorf("got %q", got)
	}
	if got := SafeString("   ", "d"); got != "d" {
		t.Errorf("got %q, want the fallback", got)
	}
}

func TestSafeInt(t *testing.T) {
	if got := SafeInt(float64(3), 9); got != 3 {
		t.Errorf("got %d", got)
	}
	if got := SafeInt("42", 9); got != 42 {
		t.Errorf("got %d", got)
	}
	if got := SafeInt(-1, 9); got != 9 {
		t.Errorf("got %d, want the fallback for non-positive input", got)
	}
	if got := SafeInt(nil, 9); got != 9 {
		t.Errorf("got %d, want the fallback for nil", got)
	}
}

func TestPlaceholderBytesDecodable(t *testing.T) {
	data := PlaceholderBytes()
	if len(data) == 0 {
		t.Fatal("placeholder bytes are empty")
	}
	// PNG signature
	if data[0] != 0x89 || data[1] != 'P' || data[2] != 'N' || data[3] != 'G' {
		t.Error("placeholder is not a PNG")
	}

	// Mutating the copy must not affect later calls
	data[0] = 0
	if PlaceholderBytes()[0] != 0x89 {
		t.Error("PlaceholderBytes returned shared backing storage")
	}
}
