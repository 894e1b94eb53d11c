package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"chainreaction/config"
	"chainreaction/game"
)

// Server hosts game sessions keyed by join code and exposes them to
// presentation clients over websocket.
type Server struct {
	cfg      *config.Config
	upgrader websocket.Upgrader

	mu       sync.Mutex
	rng      *rand.Rand
	sessions map[string]*Session
}

// New returns a server hosting games with the configured grid and player
// list.
func New(cfg *config.Config) *Server {
	return &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		rng:      rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		sessions: make(map[string]*Session),
	}
}

// Handler returns the HTTP mux: POST /games creates a session, GET
// /ws?code=XXXXXX attaches a websocket client to one.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/games", s.createGame)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	code := newJoinCode(s.rng)
	for s.sessions[code] != nil {
		code = newJoinCode(s.rng)
	}
	sess := newSession(code, s.cfg)
	s.sessions[code] = sess
	s.mu.Unlock()

	log.Info().Str("code", code).Str("id", sess.ID).Msg("session created")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"code": code, "id": sess.ID})
}

// Lookup returns the session for a join code.
func (s *Server) Lookup(code string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[strings.ToUpper(code)]
	return sess, ok
}

// retire removes a session from the join-code index; idempotent, so the
// game-over and last-client-gone paths can both call it.
func (s *Server) retire(sess *Session) {
	s.mu.Lock()
	_, present := s.sessions[sess.Code]
	delete(s.sessions, sess.Code)
	s.mu.Unlock()
	if present {
		log.Info().Str("code", sess.Code).Msg("session retired")
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.Lookup(r.URL.Query().Get("code"))
	if !ok {
		http.Error(w, "unknown game code", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(1 << 16)

	client := &wsConn{conn: conn}
	sess.Join(client)
	defer func() {
		sess.Leave(client)
		if sess.Over() && sess.ClientCount() == 0 {
			s.retire(sess)
		}
	}()

	for {
		var msg MoveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session", sess.Code).Msg("client read failed")
			}
			return
		}
		if msg.Type != "move" {
			continue
		}
		if err := sess.Submit(client, game.Position{Row: msg.Row, Col: msg.Col}); err != nil {
			// Engine fault: the session's board can no longer be
			// trusted, take it down.
			log.Error().Err(err).Str("session", sess.Code).Msg("session halted")
			s.retire(sess)
			return
		}
		// A finished game stops accepting joins; connected clients
		// already hold the terminal snapshot.
		if sess.Over() {
			s.retire(sess)
		}
	}
}

// wsConn adapts a websocket connection to the session's Conn interface,
// serializing writes.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(v)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
