package stt

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGroqTranscribe(t *testing.T) {
	var gotAuth, gotModel, gotLanguage string
	var gotAudio []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotModel = r.FormValue("model")
		gotLanguage = r.FormValue("language")
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer f.Close()
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(f)
		gotAudio = buf.Bytes()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" Tell me about your project. ","duration":3.2}`))
	}))
	defer srv.Close()

	p := NewGroq("test-key").WithBaseURL(srv.URL)

	transcript, err := p.Transcribe(context.Background(),
		bytes.NewReader([]byte{1, 2, 3, 4}),
		TranscribeOptions{Language: "en", Format: "webm"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if transcript.Text != "Tell me about your project." {
		t.Fatalf("text = %q", transcript.Text)
	}
	if transcript.Duration != 3.2 {
		t.Errorf("duration = %v", transcript.Duration)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotModel != "whisper-large-v3" {
		t.Errorf("model = %q", gotModel)
	}
	if gotLanguage != "en" {
		t.Errorf("language = %q", gotLanguage)
	}
	if !bytes.Equal(gotAudio, []byte{1, 2, 3, 4}) {
		t.Errorf("audio payload mismatch")
	}
}

func TestGroqTranscribeAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid audio"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	p := NewGroq("test-key").WithBaseURL(srv.URL)

	_, err := p.Transcribe(context.Background(), bytes.NewReader([]byte{1}), TranscribeOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestGroqTranscribeEmptyAudio(t *testing.T) {
	p := NewGroq("test-key")
	if _, err := p.Transcribe(context.Background(), bytes.NewReader(nil), TranscribeOptions{}); err == nil {
		t.Fatal("expected error for empty audio")
	}
}
