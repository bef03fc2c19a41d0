// Package live is the engine's websocket progress feed: a
// gorilla/websocket upgrader with a broadcast channel and a sync.Map
// client registry that pushes engine.Status phase transitions to every
// connected subscriber.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/devskill-org/gridopt/internal/engine"
)

// Server upgrades HTTP connections to websockets and fans out every
// engine.Status update the subscribed engine produces.
type Server struct {
	eng      *engine.Engine
	server   *http.Server
	port     int
	upgrader websocket.Upgrader
	clients  sync.Map // *websocket.Conn -> struct{}
	done     chan struct{}
}

// New creates a websocket server listening on port. Port <= 0 disables
// it.
func New(eng *engine.Engine, port int) *Server {
	if port <= 0 {
		return nil
	}

	mux := http.NewServeMux()
	s := &Server{
		eng:  eng,
		port: port,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		done: make(chan struct{}),
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	mux.HandleFunc("/ws", s.wsHandler)
	return s
}

// Start begins serving websocket connections and forwarding engine
// status updates to them.
func (s *Server) Start() error {
	if s == nil {
		return nil
	}

	go s.forwardStatus()

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("live server error: %v\n", err)
		}
	}()
	return nil
}

// Stop closes every client connection and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	close(s.done)
	s.clients.Range(func(key, _ any) bool {
		if conn, ok := key.(*websocket.Conn); ok {
			conn.Close()
		}
		return true
	})
	return s.server.Shutdown(ctx)
}

func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		fmt.Printf("websocket upgrade error: %v\n", err)
		return
	}
	s.clients.Store(conn, struct{}{})

	if err := conn.WriteJSON(s.eng.Status()); err != nil {
		fmt.Printf("failed to send initial status: %v\n", err)
	}

	defer func() {
		s.clients.Delete(conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fmt.Printf("websocket error: %v\n", err)
			}
			break
		}
	}
}

// forwardStatus subscribes to the engine and broadcasts every update
// to every connected client.
func (s *Server) forwardStatus() {
	updates := s.eng.Subscribe()
	for {
		select {
		case status, ok := <-updates:
			if !ok {
				return
			}
			s.broadcast(status)
		case <-s.done:
			return
		}
	}
}

func (s *Server) broadcast(status engine.Status) {
	message, err := json.Marshal(status)
	if err != nil {
		fmt.Printf("failed to marshal status: %v\n", err)
		return
	}
	s.clients.Range(func(key, _ any) bool {
		conn, ok := key.(*websocket.Conn)
		if !ok {
			return true
		}
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			fmt.Printf("websocket write error: %v\n", err)
			conn.Close()
			s.clients.Delete(conn)
		}
		return true
	})
}
