// Package handlers contains the HTTP entry points of the gateway.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voxhire/voxhire/pkg/gateway/config"
	"github.com/voxhire/voxhire/pkg/gateway/lifecycle"
	"github.com/voxhire/voxhire/pkg/gateway/metrics"
	"github.com/voxhire/voxhire/pkg/gateway/mw"
	"github.com/voxhire/voxhire/pkg/gateway/protocol"
	"github.com/voxhire/voxhire/pkg/gateway/session"
	"github.com/voxhire/voxhire/pkg/gateway/sessions"
	"github.com/voxhire/voxhire/pkg/interview"
	"github.com/voxhire/voxhire/pkg/llm"
	"github.com/voxhire/voxhire/pkg/store"
	"github.com/voxhire/voxhire/pkg/voice"
	"github.com/voxhire/voxhire/pkg/voice/stt"
	"github.com/voxhire/voxhire/pkg/voice/tts"
)

// InterviewHandler upgrades candidate connections to websockets and runs
// one interview session per connection.
type InterviewHandler struct {
	cfg       config.Config
	log       *slog.Logger
	registry  *sessions.Registry
	metrics   *metrics.Metrics
	store     store.Repository
	lifecycle *lifecycle.State
}

func NewInterviewHandler(cfg config.Config, log *slog.Logger, registry *sessions.Registry, m *metrics.Metrics, st store.Repository, lc *lifecycle.State) *InterviewHandler {
	return &InterviewHandler{
		cfg:       cfg,
		log:       log,
		registry:  registry,
		metrics:   m,
		store:     st,
		lifecycle: lc,
	}
}

func (h *InterviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.lifecycle != nil && h.lifecycle.Draining() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	requestID := mw.RequestIDFromContext(r.Context())

	upgrader := websocket.Upgrader{
		HandshakeTimeout: h.cfg.HandshakeTimeout,
		CheckOrigin: func(r *http.Request) bool {
			if len(h.cfg.CORSAllowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				// Non-browser clients send no Origin header.
				return true
			}
			_, ok := h.cfg.CORSAllowedOrigins[origin]
			return ok
		},
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "request_id", requestID, "error", err)
		return
	}

	init, err := h.readInit(ws)
	if err != nil {
		writeWSError(ws, err.Error())
		_ = ws.Close()
		return
	}

	sessionID := init.SessionID
	if sessionID == "" {
		sessionID = "s_" + mw.RandHex(8)
	}
	jobRole := init.JobRole
	if jobRole == "" {
		jobRole = h.cfg.DefaultJobRole
	}

	log := h.log.With("session_id", sessionID, "request_id", requestID)

	sess, err := session.New(session.Dependencies{
		Conn:        ws,
		Logger:      log,
		Agent:       h.newAgent(jobRole, log),
		Voice:       h.newVoicePipeline(log),
		Store:       h.store,
		Metrics:     h.metrics,
		SessionID:   sessionID,
		RequestID:   requestID,
		JobRole:     jobRole,
		CandidateID: init.CandidateID,
		Config: session.Config{
			MaxMessageBytes:    h.cfg.MaxMessageBytes,
			PingInterval:       h.cfg.WSPingInterval,
			WriteTimeout:       h.cfg.WSWriteTimeout,
			ReadTimeout:        h.cfg.WSReadTimeout,
			TurnTimeout:        h.cfg.TurnTimeout,
			MaxSessionDuration: h.cfg.MaxSessionDuration,
			PersistTimeout:     h.cfg.PersistTimeout,
			OutboundQueueSize:  h.cfg.OutboundQueueSize,
			TempDir:            h.cfg.AudioTempDir,
		},
	})
	if err != nil {
		log.Error("session setup failed", "error", err)
		writeWSError(ws, "internal error")
		_ = ws.Close()
		return
	}

	unregister, err := h.registry.Register(sessionID, sessions.Handle{Cancel: sess.Cancel})
	if errors.Is(err, sessions.ErrDuplicateSession) {
		// The client reused an id that is still live; give this connection
		// a fresh one rather than refusing the candidate.
		sessionID = "s_" + mw.RandHex(8)
		unregister, err = h.registry.Register(sessionID, sessions.Handle{Cancel: sess.Cancel})
	}
	if err != nil {
		log.Error("session registration failed", "error", err)
		writeWSError(ws, "internal error")
		_ = ws.Close()
		return
	}
	defer unregister()

	log.Info("interview session started", "job_role", jobRole, "candidate_id", init.CandidateID)
	_ = sess.Run()
}

// readInit reads and validates the first frame, which must be a text init
// message.
func (h *InterviewHandler) readInit(ws *websocket.Conn) (*protocol.ClientInit, error) {
	deadline := time.Now().Add(h.cfg.HandshakeTimeout)
	_ = ws.SetReadDeadline(deadline)
	defer ws.SetReadDeadline(time.Time{})

	messageType, data, err := ws.ReadMessage()
	if err != nil {
		return nil, errors.New("Expected init message")
	}
	if messageType != websocket.TextMessage {
		return nil, errors.New("Expected init message")
	}
	msg, err := protocol.DecodeClientMessage(data)
	if err != nil {
		return nil, errors.New("Expected init message")
	}
	init, ok := msg.(protocol.ClientInit)
	if !ok {
		return nil, errors.New("Expected init message")
	}
	return &init, nil
}

func (h *InterviewHandler) newAgent(jobRole string, log *slog.Logger) *interview.Agent {
	var completer llm.Completer
	if h.cfg.GroqAPIKey != "" {
		completer = llm.NewGroq(h.cfg.GroqAPIKey, llm.WithModel(h.cfg.LLMModel))
	}
	return interview.NewAgent(jobRole, completer, log)
}

func (h *InterviewHandler) newVoicePipeline(log *slog.Logger) *voice.Pipeline {
	cfg := voice.Config{
		Logger:      log,
		CallTimeout: h.cfg.CollaboratorTimeout,
		STTModel:    h.cfg.STTModel,
		Language:    h.cfg.Language,
		AudioFormat: "webm",
		Voice:       h.cfg.TTSVoiceID,
	}
	if h.cfg.GroqAPIKey != "" {
		cfg.STT = stt.NewGroq(h.cfg.GroqAPIKey)
	}
	if h.cfg.ElevenLabsAPIKey != "" {
		cfg.TTS = tts.NewElevenLabs(h.cfg.ElevenLabsAPIKey)
	}
	return voice.NewPipeline(cfg)
}

func writeWSError(ws *websocket.Conn, message string) {
	payload, err := json.Marshal(protocol.NewError(message))
	if err != nil {
		return
	}
	_ = ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
	_ = ws.WriteMessage(websocket.TextMessage, payload)
	_ = ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message))
}
