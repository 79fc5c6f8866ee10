package config

import (
	"testing"
	"time"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	if got := GetEnvString("TEST_STRING", "fallback"); got != "value" {
		t.Errorf("expected 'value', got %q", got)
	}
	if got := GetEnvString("TEST_STRING_MISSING", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if got := GetEnvInt("TEST_INT", 7); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}

	t.Setenv("TEST_INT_BAD", "not a number")
	if got := GetEnvInt("TEST_INT_BAD", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}

	if got := GetEnvInt("TEST_INT_MISSING", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"true", true},
		{"1", true},
		{"false", false},
		{"0", false},
	}
	for _, tt := range tests {
		t.Setenv("TEST_BOOL", tt.raw)
		if got := GetEnvBool("TEST_BOOL", !tt.want); got != tt.want {
			t.Errorf("GetEnvBool(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}

	if got := GetEnvBool("TEST_BOOL_MISSING", true); got != true {
		t.Error("expected fallback true")
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "30s")
	if got := GetEnvDuration("TEST_DURATION", time.Minute); got != 30*time.Second {
		t.Errorf("expected 30s, got %v", got)
	}

	t.Setenv("TEST_DURATION_BAD", "soon")
	if got := GetEnvDuration("TEST_DURATION_BAD", time.Minute); got != time.Minute {
		t.Errorf("expected fallback 1m, got %v", got)
	}
}

func TestValidateDurations(t *testing.T) {
	if err := ValidatePositiveDuration(time.Second); err != nil {
		t.Errorf("1s should be valid: %v", err)
	}
	if err := ValidatePositiveDuration(0); err == nil {
		t.Error("0 should be rejected")
	}
	if err := ValidateDurationRange(time.Second, time.Millisecond, time.Minute); err != nil {
		t.Errorf("1s in [1ms,1m] should be valid: %v", err)
	}
	if err := ValidateDurationRange(time.Hour, time.Millisecond, time.Minute); err == nil {
		t.Error("1h above range should be rejected")
	}
	if err := ValidateNonNegativeDuration(0); err != nil {
		t.Errorf("0 should be non-negative: %v", err)
	}
	if err := ValidateNonNegativeDuration(-time.Second); err == nil {
		t.Error("negative duration should be rejected")
	}
}
