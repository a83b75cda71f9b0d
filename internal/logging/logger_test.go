package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("CAMPAIGN_TEST_VALUE", "")
	if got := EnvOrDefault("CAMPAIGN_TEST_VALUE", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
	t.Setenv("CAMPAIGN_TEST_VALUE", "set")
	if got := EnvOrDefault("CAMPAIGN_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("expected set, got %q", got)
	}
}
