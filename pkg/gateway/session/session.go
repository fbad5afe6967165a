// Package session runs one candidate's interview over a websocket: it
// serializes turns, pipes audio through the voice pipeline and the
// dialogue agent, and persists the final result.
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/voxhire/voxhire/pkg/gateway/metrics"
	"github.com/voxhire/voxhire/pkg/gateway/protocol"
	"github.com/voxhire/voxhire/pkg/interview"
	"github.com/voxhire/voxhire/pkg/store"
	"github.com/voxhire/voxhire/pkg/voice"
)

const (
	statusProcessing = "Processing your response..."
	retryResponse    = "I'm sorry, I couldn't process your response. Could you please repeat that?"

	defaultOutboundQueueSize = 32
)

type Config struct {
	MaxMessageBytes    int64
	PingInterval       time.Duration
	WriteTimeout       time.Duration
	ReadTimeout        time.Duration
	TurnTimeout        time.Duration
	MaxSessionDuration time.Duration
	PersistTimeout     time.Duration
	OutboundQueueSize  int
	TempDir            string
}

// Conn is the subset of *websocket.Conn the session drives.
type Conn interface {
	wsWriter
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
}

type Dependencies struct {
	Conn    Conn
	Logger  *slog.Logger
	Agent   *interview.Agent
	Voice   *voice.Pipeline
	Store   store.Repository
	Metrics *metrics.Metrics

	SessionID   string
	RequestID   string
	JobRole     string
	CandidateID string

	Config Config
	Now    func() time.Time
}

// Session owns one interview conversation. All turn processing happens on
// the Run goroutine; only Cancel may be called from outside.
type Session struct {
	conn    Conn
	logger  *slog.Logger
	agent   *interview.Agent
	voice   *voice.Pipeline
	store   store.Repository
	metrics *metrics.Metrics

	sessionID   string
	requestID   string
	jobRole     string
	candidateID string
	cfg         Config
	now         func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	outbound      chan []byte
	closeOutbound sync.Once

	conversation []protocol.TurnRecord
	finished     bool
}

type inboundFrame struct {
	messageType int
	data        []byte
}

func New(deps Dependencies) (*Session, error) {
	if deps.Conn == nil {
		return nil, fmt.Errorf("connection is required")
	}
	if deps.Agent == nil {
		return nil, fmt.Errorf("interview agent is required")
	}
	if deps.Voice == nil {
		return nil, fmt.Errorf("voice pipeline is required")
	}
	if deps.SessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Config.OutboundQueueSize <= 0 {
		deps.Config.OutboundQueueSize = defaultOutboundQueueSize
	}
	if deps.Config.TurnTimeout <= 0 {
		deps.Config.TurnTimeout = 90 * time.Second
	}
	if deps.Config.PersistTimeout <= 0 {
		deps.Config.PersistTimeout = 10 * time.Second
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		conn:        deps.Conn,
		logger:      deps.Logger.With("session_id", deps.SessionID, "request_id", deps.RequestID),
		agent:       deps.Agent,
		voice:       deps.Voice,
		store:       deps.Store,
		metrics:     deps.Metrics,
		sessionID:   deps.SessionID,
		requestID:   deps.RequestID,
		jobRole:     deps.JobRole,
		candidateID: deps.CandidateID,
		cfg:         deps.Config,
		now:         deps.Now,
		ctx:         ctx,
		cancel:      cancel,
		outbound:    make(chan []byte, deps.Config.OutboundQueueSize),
	}, nil
}

// SessionID returns the session identifier.
func (s *Session) SessionID() string {
	return s.sessionID
}

// Cancel aborts the session, including any in-flight collaborator call.
// Safe to call from any goroutine.
func (s *Session) Cancel() {
	s.cancel()
}

// Run drives the session until the interview concludes or the connection
// drops. It blocks the calling goroutine.
func (s *Session) Run() error {
	defer s.cancel()

	start := s.now()
	s.metrics.RecordSessionStart()

	if s.cfg.MaxMessageBytes > 0 {
		s.conn.SetReadLimit(s.cfg.MaxMessageBytes)
	}
	if s.cfg.ReadTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		s.conn.SetPongHandler(func(string) error {
			return s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		})
	}

	writer := &outboundWriter{ws: s.conn, ctx: s.ctx, cfg: s.cfg, frames: s.outbound}
	writerDone := make(chan error, 1)
	go func() {
		err := writer.Run()
		if err != nil {
			// A dead writer means nobody drains the outbound queue; end
			// the session instead of processing turns into the void.
			s.cancel()
		}
		writerDone <- err
	}()

	inbound := make(chan inboundFrame, 1)
	go s.readLoop(inbound)

	s.openingTurn()

	var sessionDeadline <-chan time.Time
	if s.cfg.MaxSessionDuration > 0 {
		timer := time.NewTimer(s.cfg.MaxSessionDuration)
		defer timer.Stop()
		sessionDeadline = timer.C
	}

	outcome := "disconnected"
loop:
	for {
		select {
		case <-s.ctx.Done():
			break loop
		case <-sessionDeadline:
			s.logger.Warn("session exceeded maximum duration, finishing early")
			s.finish()
			outcome = "timed_out"
			break loop
		case frame, ok := <-inbound:
			if !ok {
				break loop
			}
			switch frame.messageType {
			case websocket.BinaryMessage:
				s.handleAudioTurn(frame.data)
				if s.finished {
					outcome = "completed"
					break loop
				}
			case websocket.TextMessage:
				switch s.handleControl(frame.data) {
				case controlEnd:
					outcome = "ended_by_client"
					break loop
				case controlViolation:
					outcome = "protocol_violation"
					s.cancel()
					break loop
				}
			}
		}
	}

	s.shutOutbound()
	if err := <-writerDone; err != nil {
		// The writer skips the close frame when a write already failed;
		// tear the connection down so the read loop unblocks.
		_ = s.conn.Close()
	}

	s.metrics.RecordSessionEnd(outcome, s.now().Sub(start))
	s.logger.Info("session finished",
		"outcome", outcome,
		"stage", s.agent.Stage().String(),
		"questions_answered", s.agent.QuestionsAnswered(),
		"duration", s.now().Sub(start))
	return nil
}

// readLoop feeds inbound frames to Run. A read error cancels the session
// context so in-flight collaborator calls are abandoned on disconnect.
func (s *Session) readLoop(out chan<- inboundFrame) {
	defer close(out)
	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("websocket read failed", "error", err)
			}
			s.cancel()
			return
		}
		if s.cfg.ReadTimeout > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		}
		select {
		case out <- inboundFrame{messageType: messageType, data: data}:
		case <-s.ctx.Done():
			return
		}
	}
}

// openingTurn greets the candidate. The opening does not consume a turn
// or produce a score.
func (s *Session) openingTurn() {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.TurnTimeout)
	defer cancel()

	text := s.agent.Introduce(ctx)
	stage := s.agent.Stage()
	s.appendTurn("interviewer", text, stage)

	audio := s.voice.Synthesize(ctx, text)
	if audio == nil {
		s.metrics.RecordFallback("tts")
	}
	s.metrics.RecordAudio("out", len(audio))
	s.send(protocol.NewInterviewerResponse(text, encodeAudio(audio), stage.String()))
}

// handleAudioTurn processes one candidate utterance end to end. Turns are
// strictly sequential; the next inbound frame waits until this returns.
func (s *Session) handleAudioTurn(data []byte) {
	if s.finished {
		return
	}
	stage := s.agent.Stage()
	if stage.Terminal() {
		return
	}

	turnStart := s.now()
	s.metrics.RecordAudio("in", len(data))
	s.send(protocol.NewStatus(statusProcessing))

	spoolPath, err := s.spoolAudio(data)
	if err != nil {
		s.logger.Error("spool audio frame", "error", err, "audio_bytes", len(data))
		s.send(protocol.NewInterviewerResponse(retryResponse, "", stage.String()))
		s.metrics.RecordTurn(stage.String(), "failed", s.now().Sub(turnStart))
		return
	}
	defer s.removeSpool(spoolPath)

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.TurnTimeout)
	defer cancel()

	audio, err := os.ReadFile(spoolPath)
	if err != nil {
		s.logger.Error("read audio spool", "error", err, "path", spoolPath)
		s.send(protocol.NewInterviewerResponse(retryResponse, "", stage.String()))
		s.metrics.RecordTurn(stage.String(), "failed", s.now().Sub(turnStart))
		return
	}

	transcript := s.voice.Transcribe(ctx, audio)
	if transcript == "" {
		// An unintelligible answer still advances the interview; it just
		// scores as a low-information response.
		s.metrics.RecordFallback("stt")
	}

	// The candidate turn is tagged with the stage it was spoken in, and
	// its transcript frame always precedes the interviewer's response.
	s.appendTurn("candidate", transcript, stage)
	s.send(protocol.NewCandidateTranscript(transcript, stage.String()))

	responseText := s.agent.Advance(ctx, transcript)
	stageAfter := s.agent.Stage()
	s.appendTurn("interviewer", responseText, stageAfter)

	responseAudio := s.voice.Synthesize(ctx, responseText)
	if responseAudio == nil {
		s.metrics.RecordFallback("tts")
	}
	s.metrics.RecordAudio("out", len(responseAudio))
	s.send(protocol.NewInterviewerResponse(responseText, encodeAudio(responseAudio), stageAfter.String()))
	s.metrics.RecordTurn(stage.String(), "ok", s.now().Sub(turnStart))

	if stageAfter.Terminal() {
		s.finish()
	}
}

type controlAction int

const (
	controlContinue controlAction = iota
	controlEnd
	controlViolation
)

// handleControl decodes a text frame. A frame that is not valid JSON is a
// protocol violation: the client gets one error frame and the session
// ends. A well-formed frame with an unknown type is tolerated.
func (s *Session) handleControl(data []byte) controlAction {
	msg, err := protocol.DecodeClientMessage(data)
	if err != nil {
		s.send(protocol.NewError(err.Error()))
		var decodeErr *protocol.DecodeError
		if errors.As(err, &decodeErr) && decodeErr.Code == protocol.CodeInvalidJSON {
			s.logger.Warn("malformed frame, closing session", "error", err)
			return controlViolation
		}
		s.logger.Warn("bad control frame", "error", err)
		return controlContinue
	}
	switch msg.(type) {
	case protocol.ClientEndInterview:
		s.finish()
		return controlEnd
	case protocol.ClientInit:
		// The handshake already consumed init; a repeat is harmless.
		s.logger.Debug("ignoring duplicate init frame")
		return controlContinue
	default:
		return controlContinue
	}
}

// finish computes the final summary, persists it, and sends
// interview_complete. Idempotent.
func (s *Session) finish() {
	if s.finished {
		return
	}
	s.finished = true

	summary := s.summary()
	s.metrics.RecordFinalScore(summary.Scores.Total)
	s.persist(summary)
	s.send(protocol.NewInterviewComplete(summary))
}

func (s *Session) summary() protocol.Summary {
	breakdown := s.agent.FinalScore()
	log := make([]protocol.TurnRecord, len(s.conversation))
	copy(log, s.conversation)
	return protocol.Summary{
		SessionID:       s.sessionID,
		CandidateName:   s.agent.CandidateName(),
		JobRole:         s.jobRole,
		Scores:          breakdown,
		TotalQuestions:  s.agent.QuestionsAnswered(),
		Stage:           s.agent.Stage().String(),
		ConversationLog: log,
	}
}

// persist writes the result with its own deadline, detached from the
// session context, so a client that disconnects right after the summary
// does not lose the stored score. Failures are logged, never fatal.
func (s *Session) persist(summary protocol.Summary) {
	if s.store == nil {
		return
	}

	logJSON, err := json.Marshal(summary.ConversationLog)
	if err != nil {
		logJSON = []byte("[]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.PersistTimeout)
	defer cancel()

	err = s.store.SaveResult(ctx, &store.InterviewResult{
		SessionID:      s.sessionID,
		CandidateID:    s.candidateID,
		CandidateName:  summary.CandidateName,
		JobRole:        summary.JobRole,
		TotalScore:     summary.Scores.Total,
		AverageScore:   summary.Scores.Average,
		TechnicalAvg:   summary.Scores.TechnicalAvg,
		BehavioralAvg:  summary.Scores.BehavioralAvg,
		QuestionsAsked: summary.TotalQuestions,
		TranscriptJSON: string(logJSON),
		CompletedAt:    s.now(),
	})
	if err != nil {
		s.logger.Error("persist interview result", "error", err)
		s.metrics.RecordResultSaveError()
	}
}

// spoolAudio writes the inbound frame to a temp file for the turn. The
// caller removes it when the turn ends, success or not.
func (s *Session) spoolAudio(data []byte) (string, error) {
	f, err := os.CreateTemp(s.cfg.TempDir, "interview-audio-*.webm")
	if err != nil {
		return "", fmt.Errorf("create spool file: %w", err)
	}
	_, writeErr := f.Write(data)
	closeErr := f.Close()
	if writeErr != nil || closeErr != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("write spool file: %w", errors.Join(writeErr, closeErr))
	}
	return f.Name(), nil
}

func (s *Session) removeSpool(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("remove audio spool", "error", err, "path", path)
	}
}

func (s *Session) appendTurn(role, text string, stage interview.Stage) {
	s.conversation = append(s.conversation, protocol.TurnRecord{
		Role:  role,
		Text:  text,
		Stage: stage.String(),
	})
}

func (s *Session) send(v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("marshal outbound frame", "error", err)
		return
	}
	select {
	case s.outbound <- payload:
	case <-s.ctx.Done():
	}
}

func (s *Session) shutOutbound() {
	s.closeOutbound.Do(func() { close(s.outbound) })
}

func encodeAudio(audio []byte) string {
	if len(audio) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(audio)
}
