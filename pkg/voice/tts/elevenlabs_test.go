package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestElevenLabsSynthesize(t *testing.T) {
	var gotKey, gotPath, gotFormat string
	var gotBody elevenLabsRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("xi-api-key")
		gotPath = r.URL.Path
		gotFormat = r.URL.Query().Get("output_format")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	p := NewElevenLabs("test-key").WithBaseURL(srv.URL)

	s, err := p.Synthesize(context.Background(), "Hello there.", SynthesizeOptions{Voice: "voice-1"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(s.Audio) != "mp3-bytes" {
		t.Fatalf("audio = %q", s.Audio)
	}
	if s.Format != "mp3_44100_128" {
		t.Errorf("format = %q", s.Format)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if gotPath != "/v1/text-to-speech/voice-1" {
		t.Errorf("path = %q", gotPath)
	}
	if gotFormat != "mp3_44100_128" {
		t.Errorf("output_format = %q", gotFormat)
	}
	if gotBody.Text != "Hello there." {
		t.Errorf("text = %q", gotBody.Text)
	}
	if gotBody.ModelID != elevenLabsDefaultModel {
		t.Errorf("model = %q", gotBody.ModelID)
	}
}

func TestElevenLabsSynthesizeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"voice not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewElevenLabs("test-key").WithBaseURL(srv.URL)

	if _, err := p.Synthesize(context.Background(), "hello", SynthesizeOptions{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestElevenLabsSynthesizeEmptyText(t *testing.T) {
	p := NewElevenLabs("test-key")
	if _, err := p.Synthesize(context.Background(), "   ", SynthesizeOptions{}); err == nil {
		t.Fatal("expected error for empty text")
	}
}
