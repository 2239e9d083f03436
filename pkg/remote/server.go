package remote

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/loom-ui/loom/pkg/protocol"
)

// RunFunc drives one connected display. The surface is already wired to the
// connection; implementations typically build a driver around it and block
// until ctx is cancelled. When RunFunc returns the connection closes.
type RunFunc func(ctx context.Context, surface *Surface) error

// ServerConfig configures a Server.
type ServerConfig struct {
	// ReadTimeout bounds waits for display frames (default 60s). Each
	// received frame extends the deadline.
	ReadTimeout time.Duration

	// WriteTimeout bounds individual frame writes (default 10s).
	WriteTimeout time.Duration

	// MaxMessageSize caps incoming messages in bytes (default 64KB).
	MaxMessageSize int64

	// CheckOrigin overrides the upgrader origin check. Nil uses the
	// gorilla same-origin default.
	CheckOrigin func(r *http.Request) bool

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Server accepts WebSocket displays and runs a program per connection.
type Server struct {
	run      RunFunc
	config   ServerConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewServer creates a Server running run for every connected display.
func NewServer(run RunFunc, config ServerConfig) *Server {
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 60 * time.Second
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 10 * time.Second
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = 64 * 1024
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Server{
		run:    run,
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     config.CheckOrigin,
		},
		logger: config.Logger,
	}
}

// Router returns a chi router with the WebSocket endpoint mounted at /ws.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/ws", s.HandleWebSocket)
	return r
}

// HandleWebSocket upgrades the request and serves the display until either
// side disconnects.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(s.config.MaxMessageSize)

	logger := s.logger.With("remote_addr", conn.RemoteAddr().String())
	logger.Info("display connected")
	defer logger.Info("display disconnected")

	// Concurrent writers: the driver flushes batches, the read loop never
	// writes, but error reports may come from either side.
	var writeMu sync.Mutex
	send := func(frame []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		return conn.WriteMessage(websocket.BinaryMessage, frame)
	}

	surface := NewSurface(send)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.run(ctx, surface)
	}()

	s.readLoop(conn, surface, logger, cancel)

	cancel()
	if err := <-done; err != nil && ctx.Err() == nil {
		logger.Error("program stopped", "error", err)
	}
}

// readLoop decodes frames from the display and dispatches events into the
// surface until the connection drops.
func (s *Server) readLoop(conn *websocket.Conn, surface *Surface, logger *slog.Logger, cancel context.CancelFunc) {
	for {
		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				logger.Error("read error", "error", err)
			}
			return
		}

		frame, err := protocol.ReadFrame(bytes.NewReader(msg))
		if err != nil {
			logger.Error("frame decode error", "error", err)
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			ev, err := protocol.DecodeEvent(protocol.NewDecoder(frame.Payload))
			if err != nil {
				logger.Error("event decode error", "error", err)
				continue
			}
			if !surface.Dispatch(ev) {
				logger.Debug("no listener for event", "node", ev.Node, "event", ev.Name)
			}

		case protocol.FrameAck:
			ack, err := protocol.DecodeAck(protocol.NewDecoder(frame.Payload))
			if err != nil {
				logger.Error("ack decode error", "error", err)
				continue
			}
			logger.Debug("batch applied", "seq", ack.Seq, "ops", ack.Applied)

		case protocol.FrameError:
			rep, err := protocol.DecodeError(protocol.NewDecoder(frame.Payload))
			if err != nil {
				logger.Error("error frame decode error", "error", err)
				continue
			}
			logger.Error("display reported error", "code", rep.Code, "message", rep.Message, "fatal", rep.Fatal)
			if rep.Fatal {
				cancel()
				return
			}

		default:
			logger.Warn("unknown frame type", "type", frame.Type)
		}
	}
}
