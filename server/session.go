package server

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"chainreaction/config"
	"chainreaction/engine"
	"chainreaction/game"
)

// gameEngine is what a session needs from the turn controller.
type gameEngine interface {
	SubmitMove(pos game.Position) ([]game.Wave, error)
	State() *game.GameState
}

// codeAlphabet avoids easily-confused characters in join codes.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const codeLength = 6

// newJoinCode draws a short human-typable code. Callers serialize access
// through the server mutex.
func newJoinCode(rng *rand.Rand) string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// Session is one hosted game: an engine instance plus the set of connected
// presentation clients. All moves resolve in-process against the one
// engine; clients are viewers of a locally hosted game, not remote peers.
type Session struct {
	ID      string
	Code    string
	players []config.Player

	mu      sync.Mutex
	eng     gameEngine
	clients map[Conn]bool
}

func newSession(code string, cfg *config.Config) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Code:    code,
		players: cfg.Players,
		eng:     engine.NewLocalEngine(cfg.Rows, cfg.Cols, len(cfg.Players)),
		clients: make(map[Conn]bool),
	}
}

// Join registers a client and sends it the current snapshot.
func (s *Session) Join(c Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = true
	if err := c.Send(stateMessage(s.eng.State(), s.players)); err != nil {
		log.Warn().Err(err).Str("session", s.Code).Msg("snapshot send failed")
		delete(s.clients, c)
		c.Close()
	}
}

// Leave drops a client.
func (s *Session) Leave(c Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[c] {
		delete(s.clients, c)
		c.Close()
	}
}

// ClientCount returns the number of connected clients.
func (s *Session) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Submit plays one move from a client. A rejected move is reported back to
// the sender only; a settled move is broadcast with its wave sequence to
// every client. Fatal engine faults propagate so the server can retire the
// session.
func (s *Session) Submit(from Conn, pos game.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.eng.State()
	player := state.CurrentPlayer
	waves, err := s.eng.SubmitMove(pos)
	if err != nil {
		if errors.Is(err, game.ErrInvalidMove) {
			if sendErr := from.Send(ErrorMessage{Type: MsgError, Error: err.Error()}); sendErr != nil {
				log.Warn().Err(sendErr).Str("session", s.Code).Msg("error send failed")
			}
			return nil
		}
		return err
	}

	msg := ResolvedMessage{
		Type:   MsgResolved,
		Move:   pos,
		Player: int(player),
		Waves:  waves,
		State:  stateMessage(s.eng.State(), s.players),
	}
	for c := range s.clients {
		if err := c.Send(msg); err != nil {
			log.Warn().Err(err).Str("session", s.Code).Msg("broadcast send failed, dropping client")
			delete(s.clients, c)
			c.Close()
		}
	}
	return nil
}

// Over reports whether the hosted game has ended.
func (s *Session) Over() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.State().IsOver()
}
