package interview

import "testing"

func TestExtractName(t *testing.T) {
	tests := []struct {
		transcript string
		want       string
		ok         bool
	}{
		{"Hi, my name is Alice and I work on backend systems.", "Alice", true},
		{"Hello, I'm Bob.", "Bob", true},
		{"I am Carol, nice to meet you", "Carol", true},
		{"this is Dmitri speaking", "Dmitri", true},
		{"im Eve", "Eve", true},
		{"name's Frank, pleased to meet you", "Frank", true},
		{"I have five years of experience", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractName(tt.transcript)
		if tt.ok && (got == "" || !ok) {
			t.Errorf("ExtractName(%q) = %q, %v; want a name", tt.transcript, got, ok)
			continue
		}
		if !tt.ok {
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractName(%q) = %q, want %q", tt.transcript, got, tt.want)
		}
	}
}

func TestExtractNameStripsPunctuation(t *testing.T) {
	got, ok := ExtractName("I am Grace.")
	if !ok || got != "Grace" {
		t.Fatalf("ExtractName = %q, %v; want Grace, true", got, ok)
	}
}
