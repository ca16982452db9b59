// Package transport serves bridge sessions over websocket connections.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/viant/firebridge/bridge"
)

const (
	// DefaultPath is the websocket endpoint path
	DefaultPath  = "/ws"
	writeTimeout = 10 * time.Second
)

// Server represents websocket host, every connection gets its own session
type Server struct {
	install  func(session *bridge.Session)
	path     string
	logger   zerolog.Logger
	metrics  *bridge.Metrics
	gatherer prometheus.Gatherer
	upgrader websocket.Upgrader
	wg       sync.WaitGroup
}

// Option represents server option
type Option func(s *Server)

// WithPath sets websocket path
func WithPath(path string) Option {
	return func(s *Server) {
		if path != "" {
			s.path = path
		}
	}
}

// WithLogger sets logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics sets session metrics and the gatherer served on /metrics
func WithMetrics(metrics *bridge.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = metrics
		s.gatherer = gatherer
	}
}

// New creates server, install registers modules with every new session
func New(install func(session *bridge.Session), opts ...Option) *Server {
	ret := &Server{
		install: install,
		path:    DefaultPath,
		logger:  zerolog.Nop(),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.logger = ret.logger.With().Str("component", "transport").Logger()
	return ret
}

// Handler returns handler serving websocket path, /metrics and /healthz
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.serveWebsocket)
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

// ListenAndServe serves until ctx is done, open connections are closed on shutdown
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
	errs := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Str("path", s.path).Msg("listening")
		errs <- server.ListenAndServe()
	}()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	s.wg.Wait()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}
	s.wg.Add(1)
	defer s.wg.Done()
	c := &connection{conn: conn, logger: s.logger.With().Str("remote", r.RemoteAddr).Logger()}
	var opts []bridge.Option
	opts = append(opts, bridge.WithLogger(c.logger))
	if s.metrics != nil {
		opts = append(opts, bridge.WithMetrics(s.metrics))
	}
	c.session = bridge.NewSession(bridge.EmitterFunc(c.emit), opts...)
	s.install(c.session)
	c.serve(r.Context())
}

// connection represents one websocket client
type connection struct {
	conn    *websocket.Conn
	session *bridge.Session
	logger  zerolog.Logger
	writeMu sync.Mutex
}

func (c *connection) serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		c.session.Invalidate()
		_ = c.conn.Close()
		c.logger.Debug().Msg("connection closed")
	}()
	go func() {
		<-ctx.Done()
		_ = c.conn.Close()
	}()
	c.logger.Debug().Msg("connection opened")
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				c.logger.Warn().Err(err).Msg("failed to read frame")
			}
			return
		}
		frame := &Frame{}
		if err = json.Unmarshal(data, frame); err != nil {
			c.write(&Frame{Type: FrameError, Error: bridge.Reject(bridge.InvalidArguments("malformed frame: %v", err))})
			continue
		}
		if frame.Type != FrameCall {
			c.write(&Frame{Type: FrameError, ID: frame.ID, Error: bridge.Reject(bridge.InvalidArguments("unsupported frame type: %q", frame.Type))})
			continue
		}
		c.call(ctx, frame)
	}
}

func (c *connection) call(ctx context.Context, frame *Frame) {
	id := frame.ID
	pending := c.session.Call(ctx, frame.Module, frame.Method, frame.Args)
	pending.Then(func(result interface{}, rejection *bridge.Rejection) {
		if rejection != nil {
			c.write(&Frame{Type: FrameError, ID: id, Error: rejection})
			return
		}
		c.write(&Frame{Type: FrameResult, ID: id, Result: result})
	})
}

func (c *connection) emit(name string, payload interface{}) {
	c.write(&Frame{Type: FrameEvent, Event: name, Payload: payload})
}

// write serializes frame, writes are not concurrent safe on websocket.Conn
func (c *connection) write(frame *Frame) {
	data, err := json.Marshal(frame)
	if err != nil {
		c.logger.Warn().Err(err).Str("type", frame.Type).Msg("failed to encode frame")
		if frame.Type == FrameEvent {
			return
		}
		data, _ = json.Marshal(&Frame{Type: FrameError, ID: frame.ID, Error: bridge.Reject(err)})
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err = c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.logger.Debug().Err(err).Str("type", frame.Type).Msg("failed to write frame")
	}
}
