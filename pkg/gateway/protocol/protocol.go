// Package protocol defines the JSON message frames exchanged with
// interview clients over the websocket.
package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voxhire/voxhire/pkg/interview"
)

type DecodeError struct {
	Code    string
	Message string
	Param   string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Param) == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Param)
}

// Decode error codes. CodeInvalidJSON marks a frame that is not valid
// JSON at all; such frames are protocol violations and end the session,
// while a well-formed frame with an unknown or missing type is tolerated.
const (
	CodeBadRequest  = "bad_request"
	CodeInvalidJSON = "invalid_json"
)

func badRequest(message, param string) *DecodeError {
	return &DecodeError{Code: CodeBadRequest, Message: message, Param: param}
}

func invalidJSON(message string) *DecodeError {
	return &DecodeError{Code: CodeInvalidJSON, Message: message}
}

// Client message types.
const (
	TypeInit         = "init"
	TypeEndInterview = "end_interview"
)

// Server message types.
const (
	TypeInterviewerResponse = "interviewer_response"
	TypeCandidateTranscript = "candidate_transcript"
	TypeStatus              = "status"
	TypeInterviewComplete   = "interview_complete"
	TypeError               = "error"
)

// ClientInit opens an interview. It must be the first text frame on the
// connection.
type ClientInit struct {
	Type        string `json:"type"`
	SessionID   string `json:"session_id,omitempty"`
	JobRole     string `json:"job_role,omitempty"`
	CandidateID string `json:"candidate_id,omitempty"`
	Token       string `json:"token,omitempty"`
}

// ClientEndInterview asks the server to finish the interview early.
type ClientEndInterview struct {
	Type string `json:"type"`
}

// DecodeClientMessage parses a client text frame into its typed form.
func DecodeClientMessage(data []byte) (any, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, invalidJSON("invalid json frame")
	}
	typ := strings.TrimSpace(envelope.Type)
	if typ == "" {
		return nil, badRequest("missing type", "type")
	}

	switch typ {
	case TypeInit:
		var msg ClientInit
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, invalidJSON("invalid init frame")
		}
		msg.SessionID = strings.TrimSpace(msg.SessionID)
		msg.JobRole = strings.TrimSpace(msg.JobRole)
		msg.CandidateID = strings.TrimSpace(msg.CandidateID)
		return msg, nil
	case TypeEndInterview:
		var msg ClientEndInterview
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, invalidJSON("invalid end_interview frame")
		}
		return msg, nil
	default:
		return nil, badRequest("unsupported message type", "type")
	}
}

// ServerInterviewerResponse carries the interviewer's next utterance,
// optionally with synthesized audio.
type ServerInterviewerResponse struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	AudioB64 string `json:"audio,omitempty"`
	Stage    string `json:"stage"`
}

// ServerCandidateTranscript echoes back what the candidate was heard to
// say. It is always sent before the interviewer's response for the turn.
type ServerCandidateTranscript struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript"`
	Stage      string `json:"stage"`
}

// ServerStatus is a transient progress notice.
type ServerStatus struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ServerError reports a recoverable or fatal session error.
type ServerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// TurnRecord is one utterance in the conversation log.
type TurnRecord struct {
	Role  string `json:"role"` // "interviewer" or "candidate"
	Text  string `json:"text"`
	Stage string `json:"stage"`
}

// Summary is the final interview report sent with interview_complete. The
// score breakdown is nested under "scores", matching what clients consume.
type Summary struct {
	SessionID       string              `json:"session_id"`
	CandidateName   string              `json:"candidate_name,omitempty"`
	JobRole         string              `json:"job_role"`
	Scores          interview.Breakdown `json:"scores"`
	TotalQuestions  int                 `json:"total_questions"`
	Stage           string              `json:"stage"`
	ConversationLog []TurnRecord        `json:"conversation_log"`
}

// ServerInterviewComplete closes out an interview with its summary.
type ServerInterviewComplete struct {
	Type    string  `json:"type"`
	Summary Summary `json:"summary"`
}

// NewInterviewerResponse builds an interviewer_response frame.
func NewInterviewerResponse(text string, audioB64, stage string) ServerInterviewerResponse {
	return ServerInterviewerResponse{
		Type:     TypeInterviewerResponse,
		Text:     text,
		AudioB64: audioB64,
		Stage:    stage,
	}
}

// NewCandidateTranscript builds a candidate_transcript frame.
func NewCandidateTranscript(transcript, stage string) ServerCandidateTranscript {
	return ServerCandidateTranscript{
		Type:       TypeCandidateTranscript,
		Transcript: transcript,
		Stage:      stage,
	}
}

// NewStatus builds a status frame.
func NewStatus(message string) ServerStatus {
	return ServerStatus{Type: TypeStatus, Message: message}
}

// NewError builds an error frame.
func NewError(message string) ServerError {
	return ServerError{Type: TypeError, Message: message}
}

// NewInterviewComplete builds an interview_complete frame.
func NewInterviewComplete(summary Summary) ServerInterviewComplete {
	return ServerInterviewComplete{Type: TypeInterviewComplete, Summary: summary}
}
