package wsapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/oskinner-dev/orbrya-student-workbench/bridge"
	"go.uber.org/zap"
)

const defaultWriteTimeout = 10 * time.Second

// Server answers boundary calls over websocket connections. Calls never
// touch the bridge directly: they are queued and run by the bridge loop.
type Server struct {
	queue        *bridge.Queue
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	log          *zap.Logger

	mu      sync.Mutex
	clients map[*clientConn]struct{}
}

type clientConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	// notify holds at most one pending event; repeated changes coalesce.
	notify chan struct{}
}

// NewServer creates a server feeding queue. A zero writeTimeout uses 10s.
func NewServer(queue *bridge.Queue, writeTimeout time.Duration, log *zap.Logger) *Server {
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		queue: queue,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		writeTimeout: writeTimeout,
		log:          log,
		clients:      make(map[*clientConn]struct{}),
	}
}

// Clients returns the number of open connections.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// BudgetChanged pushes EventBudgetChanged to every client. It never blocks,
// so it is safe to attach as a bridge notifier.
func (s *Server) BudgetChanged() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.notify <- struct{}{}:
		default:
		}
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	client := &clientConn{conn: conn, notify: make(chan struct{}, 1)}
	s.addClient(client)
	s.log.Info("client connected", zap.String("remote", r.RemoteAddr))

	ctx, cancel := context.WithCancel(r.Context())
	defer func() {
		cancel()
		s.removeClient(client)
		_ = conn.Close()
		s.log.Info("client disconnected", zap.String("remote", r.RemoteAddr))
	}()

	go s.pushEvents(ctx, client)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Warn("read failed", zap.Error(err))
			}
			return
		}

		var req Request
		if err := json.Unmarshal(payload, &req); err != nil {
			s.log.Debug("bad request", zap.Error(err))
			if err := s.write(client, Response{Error: "malformed request: " + err.Error()}); err != nil {
				return
			}
			continue
		}

		resp := s.call(ctx, req)
		if err := s.write(client, resp); err != nil {
			s.log.Warn("write failed", zap.Uint64("seq", req.Seq), zap.Error(err))
			return
		}
	}
}

func (s *Server) call(ctx context.Context, req Request) Response {
	resp := Response{Seq: req.Seq}
	var (
		result json.RawMessage
		err    error
	)
	if qerr := s.queue.Do(ctx, func(b *bridge.Bridge) {
		result, err = dispatch(b, req)
	}); qerr != nil {
		resp.Error = qerr.Error()
		return resp
	}
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Result = result
	return resp
}

func (s *Server) pushEvents(ctx context.Context, c *clientConn) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.notify:
			if err := s.write(c, Response{Event: EventBudgetChanged}); err != nil {
				return
			}
		}
	}
}

func (s *Server) write(c *clientConn, resp Response) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(resp)
}

func (s *Server) addClient(c *clientConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
}

func (s *Server) removeClient(c *clientConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
}
