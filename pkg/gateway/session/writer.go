package session

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

type wsWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// outboundWriter owns all writes to the websocket. Frames are delivered in
// the order they were enqueued, which is what gives a turn its
// transcript-before-response ordering. It exits when the frame channel is
// closed and drained, or when the session context ends.
type outboundWriter struct {
	ws     wsWriter
	ctx    context.Context
	cfg    Config
	frames <-chan []byte
}

func (w *outboundWriter) Run() error {
	if w == nil || w.ws == nil {
		return nil
	}

	pingInterval := w.cfg.PingInterval
	if pingInterval <= 0 {
		pingInterval = 20 * time.Second
	}
	writeTimeout := w.cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	closeAndReturn := func() error {
		_ = w.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout))
		return w.ws.Close()
	}

	for {
		select {
		case <-w.ctx.Done():
			w.flushOnShutdown(writeTimeout)
			return closeAndReturn()
		default:
		}

		select {
		case <-w.ctx.Done():
			w.flushOnShutdown(writeTimeout)
			return closeAndReturn()
		case <-pingTicker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := w.ws.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				return err
			}
		case frame, ok := <-w.frames:
			if !ok {
				return closeAndReturn()
			}
			if err := w.writeFrame(frame, writeTimeout); err != nil {
				return err
			}
		}
	}
}

// flushOnShutdown gives already-enqueued frames, the final summary in
// particular, a brief chance to reach the client before the close frame.
func (w *outboundWriter) flushOnShutdown(writeTimeout time.Duration) {
	flushTimeout := 200 * time.Millisecond
	if writeTimeout > 0 && writeTimeout < flushTimeout {
		flushTimeout = writeTimeout
	}
	deadline := time.Now().Add(flushTimeout)
	maxFlushFrames := 16

	for i := 0; i < maxFlushFrames && time.Now().Before(deadline); i++ {
		select {
		case frame, ok := <-w.frames:
			if !ok {
				return
			}
			_ = w.writeFrame(frame, writeTimeout)
		default:
			return
		}
	}
}

func (w *outboundWriter) writeFrame(frame []byte, writeTimeout time.Duration) error {
	if len(frame) == 0 {
		return nil
	}
	if err := w.ws.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return w.ws.WriteMessage(websocket.TextMessage, frame)
}
