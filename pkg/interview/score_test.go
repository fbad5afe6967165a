package interview

import (
	"strings"
	"testing"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		reply string
		want  float64
		ok    bool
	}{
		{"85", 85, true},
		{"Score: 72 out of 100", 72, true},
		{"I would give this a 100.", 100, true},
		{"150", 100, true},
		{"no digits here", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseScore(tt.reply)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseScore(%q) = %v, %v; want %v, %v", tt.reply, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFallbackScore(t *testing.T) {
	tests := []struct {
		name       string
		transcript string
		want       float64
	}{
		{"empty", "", 50},
		{"short answer", "I like computers a lot honestly", 50},
		{
			"medium answer no keywords",
			strings.Repeat("word ", 12),
			60,
		},
		{
			"detailed answer with keywords",
			"At my last job I implemented a payment gateway together with my team. " +
				"We discussed the tradeoffs, agreed on an approach and shipped it within a month. " +
				"It was a great learning curve for all of us involved.",
			80,
		},
		{
			"keyword bonus capped",
			"project project project project project project project project",
			80,
		},
	}
	for _, tt := range tests {
		if got := FallbackScore(tt.transcript); got != tt.want {
			t.Errorf("%s: FallbackScore = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFallbackScoreBounds(t *testing.T) {
	long := strings.Repeat("implemented designed built created project team experience ", 40)
	got := FallbackScore(long)
	if got > 100 {
		t.Fatalf("FallbackScore = %v, want <= 100", got)
	}
}
