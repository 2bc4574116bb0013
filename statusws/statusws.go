// Package statusws broadcasts dispatch run progress over WebSocket,
// grounded on the teacher's scheduler.WebServer broadcast loop: a
// sync.Map of client connections fed by a buffered broadcast channel.
package statusws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Progress is one broadcast update describing run state.
type Progress struct {
	Type      string    `json:"type"`
	RunID     string    `json:"run_id"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Server serves a /ws endpoint and fans out Progress updates to every
// connected client.
type Server struct {
	port      int
	server    *http.Server
	upgrader  websocket.Upgrader
	clients   sync.Map
	broadcast chan []byte
	done      chan struct{}
}

// New creates a Server. Returns nil if port <= 0, matching the
// teacher's "disabled when unconfigured" convention.
func New(port int) *Server {
	if port <= 0 {
		return nil
	}

	mux := http.NewServeMux()
	s := &Server{
		port: port,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		broadcast: make(chan []byte, 256),
		done:      make(chan struct{}),
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
	mux.HandleFunc("/ws", s.handleWS)
	return s
}

// Start launches the broadcast loop and the HTTP listener.
func (s *Server) Start() error {
	if s == nil {
		return nil
	}
	go s.handleBroadcasts()
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("statusws: server error: %v\n", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the server down, closing all client connections.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	close(s.done)
	s.clients.Range(func(key, _ any) bool {
		if conn, ok := key.(*websocket.Conn); ok {
			conn.Close() //nolint:gosec
		}
		return true
	})
	return s.server.Shutdown(ctx)
}

// Publish broadcasts a Progress update to all connected clients.
func (s *Server) Publish(p Progress) {
	if s == nil {
		return
	}
	message, err := json.Marshal(p)
	if err != nil {
		fmt.Printf("statusws: marshal progress: %v\n", err)
		return
	}
	select {
	case s.broadcast <- message:
	case <-s.done:
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Printf("statusws: upgrade error: %v\n", err)
		return
	}
	s.clients.Store(conn, true)

	defer func() {
		s.clients.Delete(conn)
		conn.Close() //nolint:gosec
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fmt.Printf("statusws: read error: %v\n", err)
			}
			break
		}
	}
}

func (s *Server) handleBroadcasts() {
	for {
		select {
		case message := <-s.broadcast:
			s.clients.Range(func(key, _ any) bool {
				conn, ok := key.(*websocket.Conn)
				if !ok {
					return true
				}
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close() //nolint:gosec
					s.clients.Delete(conn)
				}
				return true
			})
		case <-s.done:
			return
		}
	}
}
