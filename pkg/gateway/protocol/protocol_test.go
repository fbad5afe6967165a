package protocol

import (
	"encoding/json"
	"testing"

	"github.com/voxhire/voxhire/pkg/interview"
)

func TestDecodeClientInit(t *testing.T) {
	raw := []byte(`{"type":"init","session_id":" abc ","job_role":"Backend Engineer","candidate_id":"c1"}`)
	msg, err := DecodeClientMessage(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	init, ok := msg.(ClientInit)
	if !ok {
		t.Fatalf("decoded %T, want ClientInit", msg)
	}
	if init.SessionID != "abc" {
		t.Errorf("session_id = %q, want trimmed", init.SessionID)
	}
	if init.JobRole != "Backend Engineer" {
		t.Errorf("job_role = %q", init.JobRole)
	}
	if init.CandidateID != "c1" {
		t.Errorf("candidate_id = %q", init.CandidateID)
	}
}

func TestDecodeClientEndInterview(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"end_interview"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := msg.(ClientEndInterview); !ok {
		t.Fatalf("decoded %T, want ClientEndInterview", msg)
	}
}

func TestDecodeClientMessageErrors(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantCode string
	}{
		{"invalid json", `{not json`, CodeInvalidJSON},
		{"missing type", `{"session_id":"x"}`, CodeBadRequest},
		{"unknown type", `{"type":"dance"}`, CodeBadRequest},
	}
	for _, tt := range tests {
		_, err := DecodeClientMessage([]byte(tt.raw))
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		de, ok := err.(*DecodeError)
		if !ok {
			t.Errorf("%s: error type %T, want *DecodeError", tt.name, err)
			continue
		}
		if de.Code != tt.wantCode {
			t.Errorf("%s: code = %q, want %q", tt.name, de.Code, tt.wantCode)
		}
	}
}

func TestSummaryJSONKeys(t *testing.T) {
	s := NewInterviewComplete(Summary{
		SessionID: "s1",
		JobRole:   "Engineer",
		Scores: interview.Breakdown{
			Total:         82.4,
			Average:       81,
			TechnicalAvg:  85,
			BehavioralAvg: 78.5,
		},
		TotalQuestions: 5,
		Stage:          "conclusion",
		ConversationLog: []TurnRecord{
			{Role: "interviewer", Text: "hello", Stage: "introduction"},
		},
	})
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["type"] != "interview_complete" {
		t.Errorf("type = %v", decoded["type"])
	}
	summary, ok := decoded["summary"].(map[string]any)
	if !ok {
		t.Fatal("summary missing")
	}
	for _, key := range []string{"scores", "conversation_log", "total_questions", "stage"} {
		if _, ok := summary[key]; !ok {
			t.Errorf("summary missing key %q", key)
		}
	}
	scores, ok := summary["scores"].(map[string]any)
	if !ok {
		t.Fatal("scores is not a nested object")
	}
	for _, key := range []string{"total_score", "average_score", "technical_avg", "behavioral_avg"} {
		if _, ok := scores[key]; !ok {
			t.Errorf("scores missing key %q", key)
		}
	}
	if scores["total_score"] != 82.4 {
		t.Errorf("total_score = %v", scores["total_score"])
	}
}
