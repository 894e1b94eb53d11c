package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"chainreaction/config"
	"chainreaction/engine"
	"chainreaction/game"
)

const waveDelay = 140 * time.Millisecond

var configPath = flag.String("config", "", "path to configuration file")

// palette maps config color names onto terminal colors; unknown names fall
// back by player index.
var palette = map[string]tcell.Color{
	"red":     tcell.ColorRed,
	"blue":    tcell.ColorBlue,
	"green":   tcell.ColorGreen,
	"yellow":  tcell.ColorYellow,
	"magenta": tcell.ColorDarkMagenta,
	"cyan":    tcell.ColorDarkCyan,
}

var fallbackColors = []tcell.Color{
	tcell.ColorRed, tcell.ColorBlue, tcell.ColorGreen, tcell.ColorYellow,
	tcell.ColorDarkMagenta, tcell.ColorDarkCyan,
}

type turnController interface {
	SubmitMove(pos game.Position) ([]game.Wave, error)
	State() *game.GameState
}

type ui struct {
	screen tcell.Screen
	cfg    *config.Config
	eng    turnController
	state  *game.GameState // last settled snapshot
	cursor game.Position
	status string
}

func newUI(cfg *config.Config) (*ui, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	eng := engine.NewLocalEngine(cfg.Rows, cfg.Cols, len(cfg.Players))
	return &ui{
		screen: screen,
		cfg:    cfg,
		eng:    eng,
		state:  eng.State(),
	}, nil
}

func (u *ui) playerColor(p game.PlayerID) tcell.Color {
	if int(p) < len(u.cfg.Players) {
		if c, ok := palette[u.cfg.Players[p].Color]; ok {
			return c
		}
	}
	return fallbackColors[int(p)%len(fallbackColors)]
}

// drawBoard renders one board snapshot; the board shown may lag the
// settled state while waves animate.
func (u *ui) drawBoard(b game.Board) {
	u.screen.Clear()
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			pos := game.Position{Row: r, Col: c}
			cell, _ := b.At(pos)
			style := tcell.StyleDefault
			ch := '.'
			if !cell.Empty() {
				style = style.Foreground(u.playerColor(cell.Owner)).Bold(true)
				ch = rune('0' + min(cell.Charge, 9))
			}
			if pos == u.cursor {
				style = style.Reverse(true)
			}
			u.screen.SetContent(c*2+1, r+1, ch, nil, style)
		}
	}
	u.drawStatus(b.Rows + 2)
	u.screen.Show()
}

func (u *ui) drawStatus(row int) {
	var line string
	if winner, over := u.state.Winner(); over {
		line = fmt.Sprintf("%s wins! press q to quit", u.cfg.Players[winner].Name)
	} else {
		name := u.cfg.Players[u.state.CurrentPlayer].Name
		line = fmt.Sprintf("%s to move - arrows/hjkl, enter places, q quits", name)
	}
	if u.status != "" {
		line = u.status + " | " + line
	}
	style := tcell.StyleDefault
	if !u.state.IsOver() {
		style = style.Foreground(u.playerColor(u.state.CurrentPlayer))
	}
	for i, ch := range line {
		u.screen.SetContent(i+1, row, ch, nil, style)
	}
}

// place submits the cursor cell for the current player and replays the
// returned wave sequence at the UI's own pace.
func (u *ui) place() {
	pre := u.state
	pos := u.cursor
	waves, err := u.eng.SubmitMove(pos)
	if err != nil {
		u.status = err.Error()
		u.drawBoard(u.state.Board)
		return
	}
	u.status = ""

	// Replay: placement first, then one frame per wave.
	b := pre.Board.Copy()
	_ = b.PlaceOrIncrement(pos, pre.CurrentPlayer)
	u.drawBoard(b)
	for _, w := range waves {
		time.Sleep(waveDelay)
		if err := b.ApplyWave(w); err != nil {
			break
		}
		u.drawBoard(b)
	}

	u.state = u.eng.State()
	u.drawBoard(u.state.Board)
}

func (u *ui) moveCursor(dr, dc int) {
	next := game.Position{Row: u.cursor.Row + dr, Col: u.cursor.Col + dc}
	if u.state.Board.InBounds(next) {
		u.cursor = next
	}
	u.drawBoard(u.state.Board)
}

func (u *ui) run() {
	u.drawBoard(u.state.Board)
	for {
		ev := u.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			u.screen.Sync()
			u.drawBoard(u.state.Board)
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC,
				ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
				return
			case ev.Key() == tcell.KeyUp, ev.Key() == tcell.KeyRune && ev.Rune() == 'k':
				u.moveCursor(-1, 0)
			case ev.Key() == tcell.KeyDown, ev.Key() == tcell.KeyRune && ev.Rune() == 'j':
				u.moveCursor(1, 0)
			case ev.Key() == tcell.KeyLeft, ev.Key() == tcell.KeyRune && ev.Rune() == 'h':
				u.moveCursor(0, -1)
			case ev.Key() == tcell.KeyRight, ev.Key() == tcell.KeyRune && ev.Rune() == 'l':
				u.moveCursor(0, 1)
			case ev.Key() == tcell.KeyEnter, ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
				if !u.state.IsOver() {
					u.place()
				}
			}
		}
	}
}

func main() {
	flag.Parse()
	zerolog.SetGlobalLevel(zerolog.Disabled) // the screen owns the terminal

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	u, err := newUI(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal: %v\n", err)
		os.Exit(1)
	}
	defer u.screen.Fini()

	u.run()
}
