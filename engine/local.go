package engine

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"chainreaction/game"
)

// updateBuffer bounds pending settled updates; a slow consumer loses the
// oldest rather than blocking move resolution.
const updateBuffer = 8

var _ Engine = (*localEngine)(nil)

type localEngine struct {
	state    *game.GameState
	phase    Phase
	updateCh chan Update
}

// NewLocalEngine returns an in-process turn controller for a fresh game on
// a rows x cols board with numPlayers players in fixed turn order.
func NewLocalEngine(rows, cols, numPlayers int) *localEngine {
	return &localEngine{
		state:    game.NewGameState(rows, cols, numPlayers),
		phase:    AwaitingMove,
		updateCh: make(chan Update, updateBuffer),
	}
}

func (e *localEngine) Init() (*game.GameState, UpdateGetter) {
	getter := func() *Update {
		select {
		case u, ok := <-e.updateCh:
			if !ok {
				return nil
			}
			return &u
		default:
			return nil
		}
	}
	return e.state.Copy(), getter
}

// State returns a snapshot of the current settled state.
func (e *localEngine) State() *game.GameState {
	return e.state.Copy()
}

// CurrentPhase returns the controller's state machine position.
func (e *localEngine) CurrentPhase() Phase {
	return e.phase
}

func (e *localEngine) SubmitMove(pos game.Position) ([]game.Wave, error) {
	switch e.phase {
	case GameOver:
		return nil, fmt.Errorf("game is over: %w", game.ErrInvalidMove)
	case Resolving:
		return nil, fmt.Errorf("move submitted while resolving: %w", game.ErrInvalidMove)
	}

	player := e.state.CurrentPlayer
	e.phase = Resolving

	working := e.state.Copy()
	if err := working.Board.PlaceOrIncrement(pos, player); err != nil {
		// Rejected before anything changed; keep awaiting the same player.
		e.phase = AwaitingMove
		return nil, err
	}

	settled, waves, err := game.Resolve(working.Board, pos, player)
	if err != nil {
		return nil, e.halt(err)
	}
	working.Board = settled
	working.HasMoved[player] = true
	if err := working.Validate(); err != nil {
		return nil, e.halt(err)
	}

	log.Debug().
		Int("player", int(player)).
		Str("pos", pos.String()).
		Int("waves", len(waves)).
		Msg("move resolved")

	if winner := working.CheckWinner(); winner != game.NoOwner {
		working.Won = winner
		e.state = working
		e.phase = GameOver
		log.Info().Int("winner", int(winner)).Msg("game over")
		e.publish(Update{Move: pos, Waves: waves, State: working.Copy(), Hash: working.Hash()})
		close(e.updateCh)
	} else {
		working.CurrentPlayer = working.NextPlayer()
		e.state = working
		e.phase = AwaitingMove
		e.publish(Update{Move: pos, Waves: waves, State: working.Copy(), Hash: working.Hash()})
	}
	return waves, nil
}

// halt stops the session on an engine fault. The board cannot be trusted
// after an invariant violation, so the game is dead rather than resumed.
func (e *localEngine) halt(err error) error {
	log.Error().Err(err).Msg("engine fault, halting game")
	e.phase = GameOver
	close(e.updateCh)
	return err
}

func (e *localEngine) publish(u Update) {
	select {
	case e.updateCh <- u:
	default:
		// Drop the oldest pending update to make room.
		select {
		case dropped := <-e.updateCh:
			log.Debug().Str("move", dropped.Move.String()).Msg("update buffer full, dropped oldest")
		default:
		}
		e.updateCh <- u
	}
}
