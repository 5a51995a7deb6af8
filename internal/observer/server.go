// Package observer exposes a running shift to an external UI: a JSON
// snapshot endpoint and a websocket that pushes the snapshot after every
// tick and accepts control and action messages.
package observer

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/fc-shift-sim/sim/control"
)

// Message types sent by clients.
const (
	MsgStart   = "start"
	MsgPause   = "pause"
	MsgResume  = "resume"
	MsgRestart = "restart"
	MsgReseed  = "reseed"
	MsgStep    = "step"
	MsgSpeed   = "speed"
	MsgSelect  = "select"
	MsgAction  = "action"
)

// Message types sent by the server.
const (
	MsgSnapshot = "snapshot"
	MsgResult   = "result"
)

// ClientMsg is a control or action request from a websocket client.
type ClientMsg struct {
	Type     string          `json:"type"`
	Seed     *uint32         `json:"seed,omitempty"`     // reseed; omitted picks a clock-derived seed
	Speed    int             `json:"speed,omitempty"`    // speed
	Scenario *int            `json:"scenario,omitempty"` // select, or start from a stopped shift
	Action   *control.Action `json:"action,omitempty"`   // action
}

// ServerMsg is pushed to clients.
type ServerMsg struct {
	Type     string        `json:"type"`
	Request  string        `json:"request,omitempty"`
	Accepted bool          `json:"accepted,omitempty"`
	Error    string        `json:"error,omitempty"`
	View     *control.View `json:"view,omitempty"`
}

const (
	clientBuffer = 16
	writeTimeout = 5 * time.Second
	readTimeout  = 120 * time.Second
)

// Server fans snapshots out to websocket clients and routes their requests
// to a single controller.
type Server struct {
	ctl      *control.Controller
	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	clients map[uint64]chan []byte
}

// NewServer creates a server for ctl.
func NewServer(ctl *control.Controller) *Server {
	return &Server{
		ctl:     ctl,
		clients: make(map[uint64]chan []byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // loopback-only anyway
		},
	}
}

// Handler routes GET /api/snapshot and GET /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/snapshot", s.SnapshotHandler())
	mux.HandleFunc("/ws", s.WSHandler())
	return mux
}

// Publish pushes v to every client. Slow clients miss snapshots rather than
// blocking the tick loop.
func (s *Server) Publish(v control.View) {
	b, err := json.Marshal(ServerMsg{Type: MsgSnapshot, View: &v})
	if err != nil {
		logrus.Errorf("observer: encoding snapshot: %v", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.clients {
		select {
		case ch <- b:
		default:
			logrus.Debugf("observer: client %d lagging, snapshot dropped", id)
		}
	}
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// SnapshotHandler serves the current view as JSON.
func (s *Server) SnapshotHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(s.ctl.Snapshot())
	}
}

// WSHandler upgrades to a websocket, sends the current view, then serves requests.
func (s *Server) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id := s.nextID.Add(1)
		out := make(chan []byte, clientBuffer)
		s.mu.Lock()
		s.clients[id] = out
		s.mu.Unlock()
		logrus.Infof("observer: client %d connected from %s", id, r.RemoteAddr)

		done := make(chan struct{})
		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for {
				select {
				case <-done:
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						return
					}
				}
			}
		}()

		v := s.ctl.Snapshot()
		s.send(out, ServerMsg{Type: MsgSnapshot, View: &v})

		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var req ClientMsg
			if err := json.Unmarshal(msg, &req); err != nil {
				s.send(out, ServerMsg{Type: MsgResult, Error: fmt.Sprintf("bad message: %v", err)})
				continue
			}
			res := s.handle(req)
			s.send(out, res)
			if res.Accepted {
				s.Publish(s.ctl.Snapshot())
			}
		}

		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
		close(done)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
		select {
		case <-writerDone:
		case <-time.After(500 * time.Millisecond):
		}
		logrus.Infof("observer: client %d disconnected", id)
	}
}

func (s *Server) send(out chan []byte, m ServerMsg) {
	b, err := json.Marshal(m)
	if err != nil {
		logrus.Errorf("observer: encoding %s: %v", m.Type, err)
		return
	}
	select {
	case out <- b:
	default:
	}
}

// handle applies one client request to the controller.
func (s *Server) handle(req ClientMsg) ServerMsg {
	res := ServerMsg{Type: MsgResult, Request: req.Type}
	switch req.Type {
	case MsgStart:
		if req.Scenario != nil {
			if err := s.ctl.SelectScenario(*req.Scenario); err != nil {
				res.Error = err.Error()
				return res
			}
		}
		res.Accepted = s.ctl.Start()
	case MsgPause:
		res.Accepted = s.ctl.Pause()
	case MsgResume:
		res.Accepted = s.ctl.Resume()
	case MsgRestart:
		s.ctl.Restart()
		res.Accepted = true
	case MsgReseed:
		seed := uint32(time.Now().UnixNano())
		if req.Seed != nil {
			seed = *req.Seed
		}
		s.ctl.Reseed(seed)
		res.Accepted = true
	case MsgStep:
		res.Accepted = s.ctl.Advance()
	case MsgSpeed:
		s.ctl.SetSpeed(req.Speed)
		res.Accepted = true
	case MsgSelect:
		if req.Scenario == nil {
			res.Error = "select needs a scenario index"
			return res
		}
		if err := s.ctl.SelectScenario(*req.Scenario); err != nil {
			res.Error = err.Error()
			return res
		}
		res.Accepted = true
	case MsgAction:
		if req.Action == nil {
			res.Error = "action message needs an action"
			return res
		}
		if err := req.Action.Validate(); err != nil {
			res.Error = err.Error()
			return res
		}
		res.Accepted = s.ctl.Apply(*req.Action)
	default:
		res.Error = fmt.Sprintf("unknown message type %q", req.Type)
	}
	return res
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
