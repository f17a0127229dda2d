package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"analogy-eval/db"
)

const (
	writeWait = 10 * time.Second
	// a client that answers no ping within readTimeout is dropped
	readTimeout = 60 * time.Second
	pingPeriod  = readTimeout * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

/*
Server represents the review API server
*/
type Server struct {
	dbManager *db.Manager

	readTimeout time.Duration
	pingPeriod  time.Duration

	mu      sync.Mutex
	clients map[uuid.UUID]*client
}

// client is a WebSocket connection; writes are serialised by mu.
type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

func (c *client) ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// keepAlive pings the client until done is closed.
func (c *client) keepAlive(period time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.ping(); err != nil {
				log.WithField("conn", c.id).WithError(err).Debug("ping failed")
				return
			}
		case <-done:
			return
		}
	}
}

/*
Message is the WebSocket envelope for both requests and replies
*/
type Message struct {
	Type  string `json:"type"`
	Table string `json:"table,omitempty"`
	Row   int    `json:"row"`
	User  string `json:"user,omitempty"`
	Vote  int    `json:"vote"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type voteRequest struct {
	Row  *int   `json:"row"`
	User string `json:"user"`
	Vote *int   `json:"vote"`
}

var errIncompleteVote = errors.New("row, user and vote are required")

func (v voteRequest) complete() bool {
	return v.Row != nil && v.Vote != nil && v.User != ""
}

// wsRequest is a message read from a WebSocket client.
type wsRequest struct {
	Type  string `json:"type"`
	Table string `json:"table"`
	voteRequest
}

/*
NewServer creates a new API server
*/
func NewServer(dbManager *db.Manager) *Server {
	return &Server{
		dbManager:   dbManager,
		readTimeout: readTimeout,
		pingPeriod:  pingPeriod,
		clients:     make(map[uuid.UUID]*client),
	}
}

/*
Handler returns the routes of the review API, open to cross-origin clients
*/
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/tables", s.handleListTables)
	mux.HandleFunc("GET /api/tables/{name}", s.handleGetTable)
	mux.HandleFunc("POST /api/tables/{name}/votes", s.handleVote)
	mux.HandleFunc("GET /api/ws", s.handleWebSocket)
	return cors.Default().Handler(mux)
}

/*
Start starts the HTTP server
*/
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.Handler())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps store errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, db.ErrTableNotFound), errors.Is(err, db.ErrRowNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrInvalidRow),
		errors.Is(err, db.ErrUnknownAnnotator),
		errors.Is(err, db.ErrInvalidVote):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleListTables(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dbManager.ListTables())
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	table, err := s.dbManager.GetTable(r.PathValue("name"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, table.Snapshot())
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if !req.complete() {
		writeError(w, http.StatusBadRequest, errIncompleteVote)
		return
	}

	vote := db.Vote{
		Table: r.PathValue("name"),
		Row:   *req.Row,
		User:  req.User,
		Value: *req.Vote,
	}
	if err := s.dbManager.CastVote(vote); err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	s.broadcast(uuid.Nil, voteMessage(vote))
	writeJSON(w, http.StatusOK, vote)
}

func voteMessage(v db.Vote) Message {
	return Message{Type: "vote", Table: v.Table, Row: v.Row, User: v.User, Vote: v.Value}
}

/*
broadcast sends msg to every connected client except the sender
*/
func (s *Server) broadcast(from uuid.UUID, msg Message) {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for id, c := range s.clients {
		if id != from {
			clients = append(clients, c)
		}
	}
	s.mu.Unlock()

	for _, c := range clients {
		if err := c.send(msg); err != nil {
			log.WithField("conn", c.id).WithError(err).Debug("broadcast failed")
		}
	}
}

/*
handleWebSocket handles WebSocket connections
*/
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("failed to upgrade connection")
		return
	}

	c := &client{id: uuid.New(), conn: conn}
	logger := log.WithField("conn", c.id)
	logger.Info("client connected")

	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()

	done := make(chan struct{})
	defer func() {
		close(done)
		s.mu.Lock()
		delete(s.clients, c.id)
		s.mu.Unlock()
		conn.Close()
		logger.Info("client disconnected")
	}()

	// Set read deadline, extended by every pong
	conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.readTimeout))
		return nil
	})
	go c.keepAlive(s.pingPeriod, done)

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req wsRequest
		if err := json.Unmarshal(p, &req); err != nil {
			c.send(Message{Error: "invalid JSON"})
			continue
		}

		switch req.Type {
		case "rows":
			s.wsRows(c, req)
		case "vote":
			s.wsVote(c, req)
		default:
			c.send(Message{Type: req.Type, Error: "unknown message type"})
		}
	}
}

func (s *Server) wsRows(c *client, req wsRequest) {
	table, err := s.dbManager.GetTable(req.Table)
	if err != nil {
		c.send(Message{Type: "rows", Table: req.Table, Error: err.Error()})
		return
	}

	c.send(Message{Type: "rows", Table: req.Table, Data: table.Snapshot()})
}

func (s *Server) wsVote(c *client, req wsRequest) {
	if !req.complete() {
		c.send(Message{Type: "vote", Table: req.Table, User: req.User, Error: errIncompleteVote.Error()})
		return
	}

	vote := db.Vote{Table: req.Table, Row: *req.Row, User: req.User, Value: *req.Vote}
	if err := s.dbManager.CastVote(vote); err != nil {
		reply := voteMessage(vote)
		reply.Error = err.Error()
		c.send(reply)
		return
	}

	msg := voteMessage(vote)
	c.send(msg)
	s.broadcast(c.id, msg)
}
