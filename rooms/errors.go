/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package rooms

import "errors"

var (
	ErrRoomNotFound             = errors.New("room not found")
	ErrAlreadyStarted           = errors.New("game has already started")
	ErrDuplicateName            = errors.New("name already taken")
	ErrInsufficientParticipants = errors.New("need at least 2 players")
	ErrConnectionStale          = errors.New("connection is not subscribed to this room")
	ErrInvalidName              = errors.New("invalid name")
	ErrAlreadyJoined            = errors.New("connection already joined a room")
	ErrCodeSpaceExhausted       = errors.New("unable to allocate a free room code")
)

// UserMessage converts a rejection into the text shown to the player who
// caused it.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, ErrAlreadyStarted):
		return "Game has already started"
	case errors.Is(err, ErrDuplicateName):
		return "Name already taken"
	case errors.Is(err, ErrInsufficientParticipants):
		return "Need at least 2 players"
	case errors.Is(err, ErrInvalidName):
		return "Please enter a name of up to 32 characters"
	case errors.Is(err, ErrAlreadyJoined):
		return "You have already joined a room"
	case errors.Is(err, ErrConnectionStale):
		return "Only the host of this room can do that"
	default:
		return "Something went wrong. Please try again."
	}
}
