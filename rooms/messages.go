/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package rooms

// Inbound message types.
const (
	TypeHostJoin        = "host-join"
	TypePlayerJoin      = "player-join"
	TypeAddManualPlayer = "add-manual-player"
	TypeStartGame       = "start-game"
)

// Outbound message types.
const (
	TypePlayerList  = "player-list"
	TypeJoinSuccess = "join-success"
	TypeJoinError   = "join-error"
	TypeGameStarted = "game-started"
	TypeStartError  = "start-error"
	TypeYourNumber  = "your-number"
)

// ClientMessage is every message a client may send.
type ClientMessage struct {
	Type          string `json:"type"`
	RoomCode      string `json:"roomCode"`
	PlayerName    string `json:"playerName,omitempty"`    // player-join, add-manual-player
	PublicNumbers bool   `json:"publicNumbers,omitempty"` // start-game
}

// PlayerView is how a participant appears in a player list. It never carries
// the connection id.
type PlayerView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Manual bool   `json:"manual,omitempty"`
}

// PlayerListMessage is sent to the whole room whenever its participants
// change. Revision increases with every change.
type PlayerListMessage struct {
	Type     string       `json:"type"` // "player-list"
	Players  []PlayerView `json:"players"`
	Revision uint64       `json:"revision"`
}

type JoinSuccessMessage struct {
	Type       string `json:"type"` // "join-success"
	PlayerName string `json:"playerName"`
}

// ErrorMessage carries a rejection to the connection that caused it.
type ErrorMessage struct {
	Type    string `json:"type"` // "join-error" or "start-error"
	Message string `json:"message"`
}

type GameStartedMessage struct {
	Type         string             `json:"type"` // "game-started"
	TotalPlayers int                `json:"totalPlayers"`
	Assignments  []PublicAssignment `json:"assignments,omitempty"`
}

// YourNumberMessage is sent privately to each connected participant.
type YourNumberMessage struct {
	Type   string `json:"type"` // "your-number"
	Number int    `json:"number"`
	Total  int    `json:"total"`
}

func newPlayerList(participants []Participant, revision uint64) PlayerListMessage {
	players := make([]PlayerView, len(participants))
	for i, p := range participants {
		players[i] = PlayerView{
			ID:     p.ID,
			Name:   p.Name,
			Manual: p.Manual,
		}
	}

	return PlayerListMessage{
		Type:     TypePlayerList,
		Players:  players,
		Revision: revision,
	}
}
