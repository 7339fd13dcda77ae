// Package eventstream fans the assistant event stream out to websocket
// subscribers.
//
// The session's event queue feeds exactly one consumer; eventstream serves
// everyone else. The consumer republishes each event through [Server.Publish]
// and any number of observers (debug UIs, dashboards, recorders) subscribe
// over a websocket. Subscribers that fall behind are skipped rather than
// allowed to stall the stream.
package eventstream

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/voicekit/assist-core/assist/events"
)

const subscriberBufferSize = 64

// frame is the JSON representation of one event on the wire.
type frame struct {
	Kind      string         `json:"kind"`
	Code      int32          `json:"code"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

type subscriber struct {
	conn   *websocket.Conn
	frames chan frame
}

// Server upgrades subscriber connections and broadcasts published events to
// all of them.
type Server struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	closed      bool
}

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		logger:      slog.Default(),
		subscribers: map[*subscriber]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the subscription endpoint.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(http.HandlerFunc(s.subscribe), "eventstream")
}

// Publish broadcasts event to every current subscriber. It never blocks: a
// subscriber whose buffer is full misses the event.
func (s *Server) Publish(event events.Event) {
	f := frame{
		Kind:      event.Kind().String(),
		Code:      int32(event.Kind()),
		Payload:   event.Payload(),
		Timestamp: event.Timestamp(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subscribers {
		select {
		case sub.frames <- f:
		default:
			s.logger.Debug("skipping slow event stream subscriber",
				"remote_addr", sub.conn.RemoteAddr().String(), "kind", f.Kind)
		}
	}
}

// Subscribers reports the current subscriber count.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// Close disconnects all subscribers. Publish becomes a no-op afterwards.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	for sub := range s.subscribers {
		delete(s.subscribers, sub)
		close(sub.frames)
		sub.conn.Close()
	}
	return nil
}

func (s *Server) subscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade event stream subscriber", "error", err)
		return
	}

	sub := &subscriber{conn: conn, frames: make(chan frame, subscriberBufferSize)}
	if !s.add(sub) {
		conn.Close()
		return
	}

	// Either pump failing unblocks the other: a write failure closes the
	// conn (ending the read), a read failure removes the subscriber, which
	// closes the frame channel (ending the write).
	g := new(errgroup.Group)
	g.Go(func() error {
		defer sub.conn.Close()
		return sub.writePump()
	})
	g.Go(func() error {
		err := sub.readPump()
		s.remove(sub)
		return err
	})
	if err := g.Wait(); err != nil &&
		!websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.logger.Debug("event stream subscriber disconnected", "error", err)
	}

	s.remove(sub)
	conn.Close()
}

func (s *Server) add(sub *subscriber) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.subscribers[sub] = struct{}{}
	return true
}

func (s *Server) remove(sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[sub]; ok {
		delete(s.subscribers, sub)
		close(sub.frames)
	}
}

func (sub *subscriber) writePump() error {
	for f := range sub.frames {
		if err := sub.conn.WriteJSON(f); err != nil {
			return err
		}
	}
	return nil
}

// readPump discards subscriber messages; its job is noticing disconnects.
func (sub *subscriber) readPump() error {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return err
		}
	}
}
