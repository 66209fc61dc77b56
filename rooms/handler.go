/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package rooms

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Transport delivers messages to connections and to per-room groups.
//
// The handler calls these while holding a room's lock, so no method may block
// on network I/O; implementations enqueue and return.
type Transport interface {
	Join(group, connID string)
	Leave(group, connID string)
	Send(connID string, msg any)
	SendGroup(group string, msg any)
}

// Session is the handler's view of one connection. It is owned by the
// goroutine reading from that connection and must not be shared.
type Session struct {
	ID string

	code   string
	host   bool
	joined bool
}

func NewSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// Code returns the room this connection is subscribed to, if any.
func (s *Session) Code() string {
	return s.code
}

func (s *Session) IsHost() bool {
	return s.host
}

// Handler maps inbound client messages onto Registry and Room operations.
type Handler struct {
	registry  *Registry
	transport Transport
	log       zerolog.Logger
}

func NewHandler(registry *Registry, transport Transport, logger zerolog.Logger) *Handler {
	return &Handler{
		registry:  registry,
		transport: transport,
		log:       logger,
	}
}

// Dispatch applies one client message. The returned error is informational;
// any rejection the client needs to see has already been sent to it.
func (h *Handler) Dispatch(s *Session, msg ClientMessage) error {
	switch msg.Type {
	case TypeHostJoin:
		return h.hostJoin(s, msg)
	case TypePlayerJoin:
		return h.playerJoin(s, msg)
	case TypeAddManualPlayer:
		return h.addManualPlayer(s, msg)
	case TypeStartGame:
		return h.startGame(s, msg)
	default:
		return nil
	}
}

func (h *Handler) hostJoin(s *Session, msg ClientMessage) error {
	code := CanonicalCode(msg.RoomCode)
	if !ValidCode(code) {
		return ErrRoomNotFound
	}
	if s.joined {
		return ErrAlreadyJoined
	}

	if s.code != "" && s.code != code {
		h.transport.Leave(s.code, s.ID)
	}
	s.code, s.host = code, true

	room, err := h.registry.Lookup(code)
	if err != nil {
		h.transport.Join(code, s.ID)
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	h.transport.Join(code, s.ID)
	if room.evicted {
		return ErrRoomNotFound
	}
	h.transport.Send(s.ID, newPlayerList(room.snapshotLocked(), room.revision))

	h.log.Info().Str("room", code).Str("conn", s.ID).Msg("Host joined")

	return nil
}

func (h *Handler) playerJoin(s *Session, msg ClientMessage) error {
	if s.joined || s.host {
		return h.reject(s, TypeJoinError, ErrAlreadyJoined)
	}

	room, err := h.registry.Lookup(msg.RoomCode)
	if err != nil {
		return h.reject(s, TypeJoinError, err)
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	p, err := room.addParticipantLocked(msg.PlayerName, s.ID, false)
	if err != nil {
		return h.reject(s, TypeJoinError, err)
	}

	s.code, s.joined = room.code, true
	h.transport.Join(room.code, s.ID)
	h.transport.Send(s.ID, JoinSuccessMessage{
		Type:       TypeJoinSuccess,
		PlayerName: p.Name,
	})
	h.publishLocked(room)

	h.log.Info().Str("room", room.code).Str("player", p.Name).Msg("Player joined")

	return nil
}

// addManualPlayer fails silently; the host sees the result in the next list.
func (h *Handler) addManualPlayer(_ *Session, msg ClientMessage) error {
	room, err := h.registry.Lookup(msg.RoomCode)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	p, err := room.addParticipantLocked(msg.PlayerName, "", true)
	if err != nil {
		return err
	}
	h.publishLocked(room)

	h.log.Info().Str("room", room.code).Str("player", p.Name).Msg("Manual player added")

	return nil
}

func (h *Handler) startGame(s *Session, msg ClientMessage) error {
	code := CanonicalCode(msg.RoomCode)
	if !s.host || s.code != code {
		return h.reject(s, TypeStartError, ErrConnectionStale)
	}

	room, err := h.registry.Lookup(code)
	if err != nil {
		return h.reject(s, TypeStartError, err)
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	summary, err := room.startLocked(msg.PublicNumbers)
	if err != nil {
		return h.reject(s, TypeStartError, err)
	}

	h.transport.Send(s.ID, GameStartedMessage{
		Type:         TypeGameStarted,
		TotalPlayers: summary.Total,
		Assignments:  summary.Assignments,
	})

	for _, a := range room.assignment {
		if a.Participant.ConnID == "" {
			continue
		}

		h.transport.Send(a.Participant.ConnID, YourNumberMessage{
			Type:   TypeYourNumber,
			Number: a.Position,
			Total:  summary.Total,
		})
	}

	h.log.Info().Str("room", code).Int("players", summary.Total).Bool("public", msg.PublicNumbers).Msg("Game started")

	return nil
}

// Disconnect must be called once when the connection goes away. Calling it
// again returns ErrConnectionStale and has no effect.
func (h *Handler) Disconnect(s *Session) error {
	if s.code == "" {
		return ErrConnectionStale
	}

	code, host, joined := s.code, s.host, s.joined
	s.code, s.host, s.joined = "", false, false

	h.transport.Leave(code, s.ID)
	if host || !joined {
		return nil
	}

	room, err := h.registry.Lookup(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.removeParticipantLocked(s.ID) {
		h.publishLocked(room)
		h.log.Info().Str("room", code).Str("conn", s.ID).Msg("Player left")
	}

	return nil
}

// publishLocked sends the current participant list to the room's group.
// room.mu must be held so lists go out in mutation order.
func (h *Handler) publishLocked(room *Room) {
	h.transport.SendGroup(room.code, newPlayerList(room.snapshotLocked(), room.revision))
}

func (h *Handler) reject(s *Session, msgType string, err error) error {
	h.transport.Send(s.ID, ErrorMessage{
		Type:    msgType,
		Message: UserMessage(err),
	})

	return err
}
