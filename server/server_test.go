package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestServerCreateAndPlayOverWebsocket(t *testing.T) {
	srv := httptest.NewServer(New(testConfig()).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/games", "application/json", nil)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	defer resp.Body.Close()
	var created struct {
		Code string `json:"code"`
		ID   string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.Code == "" || created.ID == "" {
		t.Fatalf("incomplete create response: %+v", created)
	}

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?code=" + created.Code
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var snap StateMessage
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if snap.Type != MsgState || snap.CurrentPlayer != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	if err := conn.WriteJSON(MoveMessage{Type: "move", Row: 0, Col: 0}); err != nil {
		t.Fatalf("send move: %v", err)
	}
	var resolved ResolvedMessage
	if err := conn.ReadJSON(&resolved); err != nil {
		t.Fatalf("read resolution: %v", err)
	}
	if resolved.Type != MsgResolved || resolved.Player != 0 {
		t.Fatalf("unexpected resolution: %+v", resolved)
	}
	if resolved.State.CurrentPlayer != 1 {
		t.Errorf("expected turn to pass to player 1, got %d", resolved.State.CurrentPlayer)
	}
	cell := resolved.State.Board[0][0]
	if cell.Owner != 0 || cell.Charge != 1 {
		t.Errorf("expected {0, 1} at the move target, got %+v", cell)
	}
}

func TestServerRetiresSessionAfterGameOver(t *testing.T) {
	srv := New(testConfig())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/games", "application/json", nil)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	defer resp.Body.Close()
	var created struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?code=" + created.Code
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	var snap StateMessage
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	// Shortest winning game: player 0's second corner placement explodes
	// and captures player 1's only cell.
	moves := []MoveMessage{
		{Type: "move", Row: 0, Col: 0},
		{Type: "move", Row: 0, Col: 1},
		{Type: "move", Row: 0, Col: 0},
	}
	var last ResolvedMessage
	for i, m := range moves {
		if err := conn.WriteJSON(m); err != nil {
			t.Fatalf("send move %d: %v", i, err)
		}
		if err := conn.ReadJSON(&last); err != nil {
			t.Fatalf("read resolution %d: %v", i, err)
		}
	}
	if !last.State.Over || last.State.Winner != 0 {
		t.Fatalf("expected player 0 to win, got %+v", last.State)
	}

	// Retirement happens after the broadcast; poll for it.
	deadline := time.Now().Add(time.Second)
	for {
		if _, ok := srv.Lookup(created.Code); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("finished session was never retired")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// New connections to the retired code are refused.
	_, wsResp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected the handshake to fail for a retired session")
	}
	if wsResp == nil || wsResp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for a retired session, got %+v", wsResp)
	}
}

func TestServerClosesConnectionOnOversizedMessage(t *testing.T) {
	ts := httptest.NewServer(New(testConfig()).Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/games", "application/json", nil)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	defer resp.Body.Close()
	var created struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?code=" + created.Code
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	var snap StateMessage
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}

	// The read limit is in force from the first frame: a payload past it
	// gets the connection dropped, never parsed as a move.
	huge := make([]byte, 1<<17)
	for i := range huge {
		huge[i] = 'x'
	}
	if err := conn.WriteMessage(websocket.TextMessage, huge); err != nil {
		t.Fatalf("send oversized message: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	for {
		if err := conn.ReadJSON(&snap); err != nil {
			return // server closed the connection, as expected
		}
	}
}

func TestServerRejectsUnknownCode(t *testing.T) {
	srv := httptest.NewServer(New(testConfig()).Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?code=NOSUCH"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected the handshake to fail for an unknown code")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %+v", resp)
	}
}

func TestServerCreateRequiresPost(t *testing.T) {
	srv := httptest.NewServer(New(testConfig()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/games")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}
