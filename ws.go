/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/Seednode/shufflebox/rooms"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// Client is one WebSocket connection. Messages are queued on send and
// written by writePump; nothing else touches the socket for writing.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan any
	log  zerolog.Logger

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(id string, conn *websocket.Conn, logger zerolog.Logger) *Client {
	return &Client{
		id:   id,
		conn: conn,
		send: make(chan any, sendBuffer),
		log:  logger,
		done: make(chan struct{}),
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
	})
}

// enqueue never blocks. A client whose buffer is full is disconnected.
func (c *Client) enqueue(msg any) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- msg:
	default:
		c.log.Warn().Msg("SERVE: send buffer full, dropping client")
		c.close()
	}
}

type group struct {
	mu      sync.Mutex
	members map[string]*Client
	dead    bool
}

// Hub implements rooms.Transport on top of WebSocket clients. Each room's
// group has its own lock; there is no hub-wide lock.
type Hub struct {
	clients sync.Map // conn id -> *Client
	groups  sync.Map // room code -> *group
}

func newHub() *Hub {
	return &Hub{}
}

func (h *Hub) register(c *Client) {
	h.clients.Store(c.id, c)
}

func (h *Hub) unregister(c *Client) {
	h.clients.CompareAndDelete(c.id, c)
}

func (h *Hub) Join(code, connID string) {
	v, ok := h.clients.Load(connID)
	if !ok {
		return
	}
	c := v.(*Client)

	for {
		gv, _ := h.groups.LoadOrStore(code, &group{members: make(map[string]*Client)})
		g := gv.(*group)

		g.mu.Lock()
		if g.dead {
			g.mu.Unlock()
			continue
		}
		g.members[connID] = c
		g.mu.Unlock()

		return
	}
}

func (h *Hub) Leave(code, connID string) {
	v, ok := h.groups.Load(code)
	if !ok {
		return
	}
	g := v.(*group)

	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.members, connID)
	if len(g.members) == 0 && !g.dead {
		g.dead = true
		h.groups.CompareAndDelete(code, g)
	}
}

func (h *Hub) Send(connID string, msg any) {
	if v, ok := h.clients.Load(connID); ok {
		v.(*Client).enqueue(msg)
	}
}

func (h *Hub) SendGroup(code string, msg any) {
	v, ok := h.groups.Load(code)
	if !ok {
		return
	}
	g := v.(*group)

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, c := range g.members {
		c.enqueue(msg)
	}
}

// dropGroup forgets an evicted room's subscribers. Their connections stay open.
func (h *Hub) dropGroup(code string) {
	v, ok := h.groups.LoadAndDelete(code)
	if !ok {
		return
	}
	g := v.(*group)

	g.mu.Lock()
	g.dead = true
	g.members = nil
	g.mu.Unlock()
}

func (h *Hub) connections() int {
	n := 0
	h.clients.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}

func (c *Client) readPump(handler *rooms.Handler, session *rooms.Session) {
	defer func() {
		if err := handler.Disconnect(session); err != nil && !errors.Is(err, rooms.ErrConnectionStale) {
			c.log.Debug().Err(err).Msg("GAMES: disconnect")
		}
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("SERVE: read failed")
			}
			return
		}

		var msg rooms.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Debug().Err(err).Msg("SERVE: ignoring malformed message")
			continue
		}

		if err := handler.Dispatch(session, msg); err != nil {
			c.log.Debug().Err(err).Str("type", msg.Type).Str("room", rooms.CanonicalCode(msg.RoomCode)).Msg("GAMES: rejected")
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// checkOrigin accepts every origin unless --cors-origin was given, in which
// case only same-host pages and the listed origins may connect.
func checkOrigin(cfg *Config) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(cfg.corsOrigins) == 0 || origin == "" {
			return true
		}

		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}

		return slices.Contains(cfg.corsOrigins, origin)
	}
}

func serveWS(cfg *Config, logger zerolog.Logger, hub *Hub, handler *rooms.Handler) httprouter.Handle {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     checkOrigin(cfg),
	}

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Debug().Err(err).Str("ip", realIP(r)).Msg("SERVE: websocket upgrade failed")
			return
		}

		session := rooms.NewSession()
		client := newClient(session.ID, conn, logger.With().Str("conn", session.ID).Str("ip", realIP(r)).Logger())

		hub.register(client)
		defer hub.unregister(client)

		client.log.Debug().Int("connections", hub.connections()).Msg("SERVE: websocket connected")

		go client.writePump()
		client.readPump(handler, session)
	}
}
