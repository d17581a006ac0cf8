// Package monitor is a websocket telemetry server for one or more motion
// nodes, grounded on the teacher pack's moonraker server (AndySze-klipper's
// go/pkg/moonraker/server.go): the same gorilla/websocket
// Upgrader/WSClient/sendCh/readPump/writePump shape, reduced from a full
// Moonraker-compatible JSON-RPC API surface down to the one thing this
// project's host tooling actually needs — a periodic snapshot of every
// attached node's status pushed to whatever dashboard is watching.
package monitor

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Snapshot is one node's telemetry at a point in time, suitable for direct
// JSON encoding.
type Snapshot struct {
	Name          string  `json:"name"`
	SegmentKey    uint8   `json:"segment_key"`
	TimeRemaining uint32  `json:"time_remaining"`
	Position      []int32 `json:"position"`
	ReadPosition  uint8   `json:"read_position"`
	WritePosition uint8   `json:"write_position"`
}

// Source is anything that can report a current Snapshot. host/client.Client
// satisfies it; cmd/nodesim passes a Client attached to its in-process bus.
type Source interface {
	Snapshot() (Snapshot, error)
}

// Config holds server construction parameters.
type Config struct {
	// Addr is the HTTP listen address (e.g. ":8732").
	Addr string

	// Nodes maps a display name to its telemetry source. Sources are
	// polled once per PollInterval and the results pushed to every
	// connected websocket client.
	Nodes map[string]Source

	// PollInterval defaults to 100ms if zero.
	PollInterval time.Duration
}

// Server serves /telemetry over websocket and /status as a one-shot REST
// snapshot.
type Server struct {
	addr         string
	nodes        map[string]Source
	pollInterval time.Duration

	httpServer *http.Server
	upgrader   websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[int64]*wsClient
	nextID    int64

	running atomic.Bool
}

// New constructs a Server. Call Start to begin serving.
func New(cfg Config) *Server {
	interval := cfg.PollInterval
	if interval == 0 {
		interval = 100 * time.Millisecond
	}
	return &Server{
		addr:         cfg.Addr,
		nodes:        cfg.Nodes,
		pollInterval: interval,
		clients:      make(map[int64]*wsClient),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start begins serving HTTP and the status broadcast loop. It blocks until
// the server stops.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/telemetry", s.handleWebSocket)
	mux.HandleFunc("/status", s.handleStatus)

	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}
	s.running.Store(true)

	go s.broadcastLoop()

	log.Printf("monitor: telemetry server starting on %s", s.addr)
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server and every connected client down.
func (s *Server) Stop() error {
	s.running.Store(false)

	s.clientsMu.Lock()
	for _, c := range s.clients {
		c.Close()
	}
	s.clients = make(map[int64]*wsClient)
	s.clientsMu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) snapshotAll() []Snapshot {
	out := make([]Snapshot, 0, len(s.nodes))
	for name, src := range s.nodes {
		snap, err := src.Snapshot()
		if err != nil {
			log.Printf("monitor: snapshot %s: %v", name, err)
			continue
		}
		snap.Name = name
		out = append(out, snap)
	}
	return out
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.snapshotAll())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("monitor: websocket upgrade: %v", err)
		return
	}

	id := atomic.AddInt64(&s.nextID, 1)
	client := &wsClient{id: id, conn: conn, sendCh: make(chan any, 16), done: make(chan struct{})}

	s.clientsMu.Lock()
	s.clients[id] = client
	s.clientsMu.Unlock()

	go client.writePump()
	client.readPump(func() { s.removeClient(id) })
}

func (s *Server) removeClient(id int64) {
	s.clientsMu.Lock()
	delete(s.clients, id)
	s.clientsMu.Unlock()
}

func (s *Server) broadcastLoop() {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for s.running.Load() {
		<-ticker.C
		snaps := s.snapshotAll()

		s.clientsMu.RLock()
		for _, c := range s.clients {
			c.Send(snaps)
		}
		s.clientsMu.RUnlock()
	}
}

// wsClient is one connected telemetry subscriber.
type wsClient struct {
	id     int64
	conn   *websocket.Conn
	sendCh chan any
	done   chan struct{}
	mu     sync.Mutex
}

func (c *wsClient) Send(msg any) {
	select {
	case c.sendCh <- msg:
	case <-c.done:
	default:
		log.Printf("monitor: dropping message to client %d (channel full)", c.id)
	}
}

func (c *wsClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.done:
		return
	default:
		close(c.done)
	}
	c.conn.Close()
}

func (c *wsClient) readPump(onClose func()) {
	defer func() {
		onClose()
		c.Close()
	}()
	c.conn.SetReadLimit(4096)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case msg, ok := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
