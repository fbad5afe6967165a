// Package config loads and validates gateway configuration from the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AuthMode string

const (
	AuthModeRequired AuthMode = "required"
	AuthModeOptional AuthMode = "optional"
	AuthModeDisabled AuthMode = "disabled"
)

type Config struct {
	Addr string

	AuthMode AuthMode
	APIKeys  map[string]struct{}

	// CORS
	CORSAllowedOrigins map[string]struct{} // empty => disabled

	// Persistence
	DatabasePath string

	// Collaborator credentials and models.
	GroqAPIKey       string
	ElevenLabsAPIKey string
	LLMModel         string
	STTModel         string
	TTSVoiceID       string
	Language         string

	// Interview defaults.
	DefaultJobRole string

	// WebSocket interview sessions.
	MaxMessageBytes     int64
	WSPingInterval      time.Duration
	WSWriteTimeout      time.Duration
	WSReadTimeout       time.Duration
	HandshakeTimeout    time.Duration
	TurnTimeout         time.Duration
	CollaboratorTimeout time.Duration
	MaxSessionDuration  time.Duration
	PersistTimeout      time.Duration
	OutboundQueueSize   int
	AudioTempDir        string

	// Operational defaults
	ReadHeaderTimeout   time.Duration
	ReadTimeout         time.Duration
	ShutdownGracePeriod time.Duration

	MetricsNamespace string
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                envOr("VOXHIRE_ADDR", ":8080"),
		AuthMode:            AuthMode(envOr("VOXHIRE_AUTH_MODE", string(AuthModeDisabled))),
		APIKeys:             make(map[string]struct{}),
		CORSAllowedOrigins:  make(map[string]struct{}),
		DatabasePath:        envOr("VOXHIRE_DB_PATH", "data/voxhire.db"),
		GroqAPIKey:          strings.TrimSpace(os.Getenv("VOXHIRE_GROQ_API_KEY")),
		ElevenLabsAPIKey:    strings.TrimSpace(os.Getenv("VOXHIRE_ELEVENLABS_API_KEY")),
		LLMModel:            envOr("VOXHIRE_LLM_MODEL", "llama-3.3-70b-versatile"),
		STTModel:            envOr("VOXHIRE_STT_MODEL", "whisper-large-v3"),
		TTSVoiceID:          envOr("VOXHIRE_TTS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM"),
		Language:            envOr("VOXHIRE_LANGUAGE", "en"),
		DefaultJobRole:      envOr("VOXHIRE_DEFAULT_JOB_ROLE", "Software Engineer"),
		MaxMessageBytes:     envInt64Or("VOXHIRE_WS_MAX_MESSAGE_BYTES", 8<<20), // 8 MiB audio frames
		WSPingInterval:      envDurationOr("VOXHIRE_WS_PING_INTERVAL", 20*time.Second),
		WSWriteTimeout:      envDurationOr("VOXHIRE_WS_WRITE_TIMEOUT", 5*time.Second),
		WSReadTimeout:       envDurationOr("VOXHIRE_WS_READ_TIMEOUT", 5*time.Minute),
		HandshakeTimeout:    envDurationOr("VOXHIRE_WS_HANDSHAKE_TIMEOUT", 10*time.Second),
		TurnTimeout:         envDurationOr("VOXHIRE_TURN_TIMEOUT", 90*time.Second),
		CollaboratorTimeout: envDurationOr("VOXHIRE_COLLABORATOR_TIMEOUT", 30*time.Second),
		MaxSessionDuration:  envDurationOr("VOXHIRE_WS_MAX_DURATION", 2*time.Hour),
		PersistTimeout:      envDurationOr("VOXHIRE_PERSIST_TIMEOUT", 10*time.Second),
		OutboundQueueSize:   envIntOr("VOXHIRE_WS_OUTBOUND_QUEUE", 32),
		AudioTempDir:        envOr("VOXHIRE_AUDIO_TEMP_DIR", os.TempDir()),
		ReadHeaderTimeout:   envDurationOr("VOXHIRE_READ_HEADER_TIMEOUT", 10*time.Second),
		ReadTimeout:         envDurationOr("VOXHIRE_READ_TIMEOUT", 30*time.Second),
		ShutdownGracePeriod: envDurationOr("VOXHIRE_SHUTDOWN_GRACE_PERIOD", 30*time.Second),
		MetricsNamespace:    envOr("VOXHIRE_METRICS_NAMESPACE", "voxhire"),
	}

	switch cfg.AuthMode {
	case AuthModeRequired, AuthModeOptional, AuthModeDisabled:
	default:
		return Config{}, fmt.Errorf("VOXHIRE_AUTH_MODE must be one of required|optional|disabled")
	}

	for _, key := range splitCSV(os.Getenv("VOXHIRE_API_KEYS")) {
		cfg.APIKeys[key] = struct{}{}
	}
	for _, origin := range splitCSV(os.Getenv("VOXHIRE_CORS_ORIGINS")) {
		cfg.CORSAllowedOrigins[origin] = struct{}{}
	}

	if strings.TrimSpace(cfg.DatabasePath) == "" {
		return Config{}, fmt.Errorf("VOXHIRE_DB_PATH must not be empty")
	}
	if cfg.MaxMessageBytes <= 0 {
		return Config{}, fmt.Errorf("VOXHIRE_WS_MAX_MESSAGE_BYTES must be > 0")
	}
	if cfg.WSPingInterval <= 0 {
		return Config{}, fmt.Errorf("VOXHIRE_WS_PING_INTERVAL must be > 0")
	}
	if cfg.WSWriteTimeout <= 0 {
		return Config{}, fmt.Errorf("VOXHIRE_WS_WRITE_TIMEOUT must be > 0")
	}
	if cfg.WSReadTimeout < 0 {
		return Config{}, fmt.Errorf("VOXHIRE_WS_READ_TIMEOUT must be >= 0")
	}
	if cfg.HandshakeTimeout <= 0 {
		return Config{}, fmt.Errorf("VOXHIRE_WS_HANDSHAKE_TIMEOUT must be > 0")
	}
	if cfg.TurnTimeout <= 0 {
		return Config{}, fmt.Errorf("VOXHIRE_TURN_TIMEOUT must be > 0")
	}
	if cfg.CollaboratorTimeout <= 0 {
		return Config{}, fmt.Errorf("VOXHIRE_COLLABORATOR_TIMEOUT must be > 0")
	}
	if cfg.CollaboratorTimeout > cfg.TurnTimeout {
		return Config{}, fmt.Errorf("VOXHIRE_COLLABORATOR_TIMEOUT must be <= VOXHIRE_TURN_TIMEOUT")
	}
	if cfg.MaxSessionDuration <= 0 {
		return Config{}, fmt.Errorf("VOXHIRE_WS_MAX_DURATION must be > 0")
	}
	if cfg.PersistTimeout <= 0 {
		return Config{}, fmt.Errorf("VOXHIRE_PERSIST_TIMEOUT must be > 0")
	}
	if cfg.OutboundQueueSize <= 0 {
		return Config{}, fmt.Errorf("VOXHIRE_WS_OUTBOUND_QUEUE must be > 0")
	}
	if strings.TrimSpace(cfg.AudioTempDir) == "" {
		return Config{}, fmt.Errorf("VOXHIRE_AUDIO_TEMP_DIR must not be empty")
	}
	if cfg.ReadHeaderTimeout <= 0 {
		return Config{}, fmt.Errorf("VOXHIRE_READ_HEADER_TIMEOUT must be > 0")
	}
	if cfg.ReadTimeout <= 0 {
		return Config{}, fmt.Errorf("VOXHIRE_READ_TIMEOUT must be > 0")
	}
	if cfg.ShutdownGracePeriod <= 0 {
		return Config{}, fmt.Errorf("VOXHIRE_SHUTDOWN_GRACE_PERIOD must be > 0")
	}

	if cfg.AuthMode == AuthModeRequired && len(cfg.APIKeys) == 0 {
		return Config{}, fmt.Errorf("VOXHIRE_API_KEYS must be set when VOXHIRE_AUTH_MODE=required")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt64Or(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
