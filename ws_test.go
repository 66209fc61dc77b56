/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/shufflebox/rooms"
)

type envelope struct {
	Type string `json:"type"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg rooms.ClientMessage) {
	t.Helper()

	require.NoError(t, conn.WriteJSON(msg))
}

// expect reads until a message of the wanted type arrives and decodes it.
func expect[T any](t *testing.T, conn *websocket.Conn, msgType string) T {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", msgType)

		var env envelope
		require.NoError(t, json.Unmarshal(data, &env))
		if env.Type != msgType {
			continue
		}

		var out T
		require.NoError(t, json.Unmarshal(data, &out))

		return out
	}
}

func names(list rooms.PlayerListMessage) []string {
	out := make([]string, len(list.Players))
	for i, p := range list.Players {
		out[i] = p.Name
	}

	return out
}

func TestWebSocket_RoomLifecycle(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	code := createRoom(t, srv, "").Code

	host := dial(t, srv)
	send(t, host, rooms.ClientMessage{Type: rooms.TypeHostJoin, RoomCode: strings.ToLower(code)})
	list := expect[rooms.PlayerListMessage](t, host, rooms.TypePlayerList)
	assert.Empty(t, list.Players)

	alice := dial(t, srv)
	send(t, alice, rooms.ClientMessage{Type: rooms.TypePlayerJoin, RoomCode: code, PlayerName: "  Alice "})
	joined := expect[rooms.JoinSuccessMessage](t, alice, rooms.TypeJoinSuccess)
	assert.Equal(t, "Alice", joined.PlayerName)

	list = expect[rooms.PlayerListMessage](t, host, rooms.TypePlayerList)
	assert.Equal(t, []string{"Alice"}, names(list))

	imposter := dial(t, srv)
	send(t, imposter, rooms.ClientMessage{Type: rooms.TypePlayerJoin, RoomCode: code, PlayerName: "alice"})
	rejected := expect[rooms.ErrorMessage](t, imposter, rooms.TypeJoinError)
	assert.Equal(t, "Name already taken", rejected.Message)

	bob := dial(t, srv)
	send(t, bob, rooms.ClientMessage{Type: rooms.TypePlayerJoin, RoomCode: code, PlayerName: "Bob"})
	expect[rooms.JoinSuccessMessage](t, bob, rooms.TypeJoinSuccess)
	list = expect[rooms.PlayerListMessage](t, host, rooms.TypePlayerList)
	assert.Equal(t, []string{"Alice", "Bob"}, names(list))

	send(t, host, rooms.ClientMessage{Type: rooms.TypeAddManualPlayer, RoomCode: code, PlayerName: "Grandma"})
	list = expect[rooms.PlayerListMessage](t, host, rooms.TypePlayerList)
	assert.Equal(t, []string{"Alice", "Bob", "Grandma"}, names(list))
	assert.True(t, list.Players[2].Manual)

	send(t, host, rooms.ClientMessage{Type: rooms.TypeStartGame, RoomCode: code, PublicNumbers: true})
	started := expect[rooms.GameStartedMessage](t, host, rooms.TypeGameStarted)
	assert.Equal(t, 3, started.TotalPlayers)
	require.Len(t, started.Assignments, 3)

	byName := make(map[string]int)
	for i, a := range started.Assignments {
		assert.Equal(t, i+1, a.Number)
		byName[a.Name] = a.Number
	}

	for name, conn := range map[string]*websocket.Conn{"Alice": alice, "Bob": bob} {
		mine := expect[rooms.YourNumberMessage](t, conn, rooms.TypeYourNumber)
		assert.Equal(t, byName[name], mine.Number, name)
		assert.Equal(t, 3, mine.Total)
	}

	late := dial(t, srv)
	send(t, late, rooms.ClientMessage{Type: rooms.TypePlayerJoin, RoomCode: code, PlayerName: "Dana"})
	rejected = expect[rooms.ErrorMessage](t, late, rooms.TypeJoinError)
	assert.Equal(t, "Game has already started", rejected.Message)
}

func TestWebSocket_DisconnectUpdatesList(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	code := createRoom(t, srv, "").Code

	host := dial(t, srv)
	send(t, host, rooms.ClientMessage{Type: rooms.TypeHostJoin, RoomCode: code})
	expect[rooms.PlayerListMessage](t, host, rooms.TypePlayerList)

	alice := dial(t, srv)
	send(t, alice, rooms.ClientMessage{Type: rooms.TypePlayerJoin, RoomCode: code, PlayerName: "Alice"})
	list := expect[rooms.PlayerListMessage](t, host, rooms.TypePlayerList)
	require.Equal(t, []string{"Alice"}, names(list))

	require.NoError(t, alice.Close())

	list = expect[rooms.PlayerListMessage](t, host, rooms.TypePlayerList)
	assert.Empty(t, list.Players)
}

func TestWebSocket_StartErrors(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	code := createRoom(t, srv, "").Code

	stranger := dial(t, srv)
	send(t, stranger, rooms.ClientMessage{Type: rooms.TypeStartGame, RoomCode: code})
	rejected := expect[rooms.ErrorMessage](t, stranger, rooms.TypeStartError)
	assert.Equal(t, "Only the host of this room can do that", rejected.Message)

	host := dial(t, srv)
	send(t, host, rooms.ClientMessage{Type: rooms.TypeHostJoin, RoomCode: code})
	expect[rooms.PlayerListMessage](t, host, rooms.TypePlayerList)

	send(t, host, rooms.ClientMessage{Type: rooms.TypeAddManualPlayer, RoomCode: code, PlayerName: "Solo"})
	expect[rooms.PlayerListMessage](t, host, rooms.TypePlayerList)

	send(t, host, rooms.ClientMessage{Type: rooms.TypeStartGame, RoomCode: code})
	rejected = expect[rooms.ErrorMessage](t, host, rooms.TypeStartError)
	assert.Equal(t, "Need at least 2 players", rejected.Message)
}

func TestWebSocket_MalformedMessagesAreIgnored(t *testing.T) {
	srv, _ := newTestServer(t, testConfig())
	code := createRoom(t, srv, "").Code

	host := dial(t, srv)
	require.NoError(t, host.WriteMessage(websocket.TextMessage, []byte("{not json")))
	send(t, host, rooms.ClientMessage{Type: "dance"})
	send(t, host, rooms.ClientMessage{Type: rooms.TypeHostJoin, RoomCode: code})

	expect[rooms.PlayerListMessage](t, host, rooms.TypePlayerList)
}

func TestCheckOrigin(t *testing.T) {
	cfg := testConfig()
	check := checkOrigin(cfg)

	req := httptest.NewRequest(http.MethodGet, "http://shufflebox.local/ws", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	assert.True(t, check(req), "open when no origins are configured")

	cfg.corsOrigins = []string{"https://party.example.com"}

	assert.False(t, check(req))

	req.Header.Set("Origin", "https://party.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://shufflebox.local")
	assert.True(t, check(req), "same host")

	req.Header.Del("Origin")
	assert.True(t, check(req), "non-browser clients")
}

func newTestClient(h *Hub, id string) *Client {
	c := newClient(id, nil, zerolog.Nop())
	h.register(c)

	return c
}

func TestHub_GroupDelivery(t *testing.T) {
	h := newHub()
	a := newTestClient(h, "a")
	b := newTestClient(h, "b")
	c := newTestClient(h, "c")

	h.Join("ROOM01", "a")
	h.Join("ROOM01", "b")
	h.Join("ROOM02", "c")
	h.Join("ROOM01", "nobody")

	h.SendGroup("ROOM01", "hello")
	h.Send("c", "direct")
	h.Send("nobody", "lost")
	h.SendGroup("ROOM99", "lost")

	assert.Equal(t, "hello", <-a.send)
	assert.Equal(t, "hello", <-b.send)
	assert.Equal(t, "direct", <-c.send)
	assert.Empty(t, a.send)
	assert.Empty(t, c.send)
	assert.Equal(t, 3, h.connections())
}

func TestHub_LeaveForgetsEmptyGroups(t *testing.T) {
	h := newHub()
	a := newTestClient(h, "a")
	newTestClient(h, "b")

	h.Join("ROOM01", "a")
	h.Join("ROOM01", "b")

	h.Leave("ROOM01", "b")
	_, ok := h.groups.Load("ROOM01")
	assert.True(t, ok)

	h.Leave("ROOM01", "a")
	_, ok = h.groups.Load("ROOM01")
	assert.False(t, ok)

	h.Join("ROOM01", "a")
	h.SendGroup("ROOM01", "again")
	assert.Equal(t, "again", <-a.send)
}

func TestHub_DropGroup(t *testing.T) {
	h := newHub()
	a := newTestClient(h, "a")
	h.Join("ROOM01", "a")

	h.dropGroup("ROOM01")
	h.SendGroup("ROOM01", "gone")
	assert.Empty(t, a.send)

	select {
	case <-a.done:
		t.Fatal("dropping a group must not close its connections")
	default:
	}
}

func TestClient_FullBufferDropsClient(t *testing.T) {
	h := newHub()
	a := newTestClient(h, "a")

	for i := range sendBuffer {
		a.enqueue(i)
	}

	select {
	case <-a.done:
		t.Fatal("client closed before its buffer filled")
	default:
	}

	a.enqueue("overflow")

	select {
	case <-a.done:
	default:
		t.Fatal("client should be closed once its buffer overflows")
	}

	assert.NotPanics(t, func() { a.enqueue("after close") })
	h.unregister(a)
	assert.Zero(t, h.connections())
}
