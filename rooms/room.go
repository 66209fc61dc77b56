/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package rooms

import (
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxNameLength = 32

// Participant is an entrant in a room. ConnID is empty for players the host
// added by hand; those never receive a private result.
type Participant struct {
	ID     string
	ConnID string
	Name   string
	Manual bool
}

// Assignment pairs a participant with the position drawn for them.
type Assignment struct {
	Participant Participant
	Position    int
}

// PublicAssignment is the part of an Assignment that may be shown to the host.
type PublicAssignment struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// StartSummary is returned from a successful Start. Assignments is only set
// when the room was started with a public reveal.
type StartSummary struct {
	Total       int
	Assignments []PublicAssignment
}

// Status is a read-only view used by the HTTP layer.
type Status struct {
	Started     bool
	PlayerCount int
	CreatedAt   time.Time
}

// Room is one game session. Every field below mu is guarded by it.
type Room struct {
	code string
	src  Source

	mu           sync.Mutex
	createdAt    time.Time
	participants []Participant
	started      bool
	assignment   []Assignment
	revision     uint64
	evicted      bool
}

func newRoom(code string, src Source, createdAt time.Time) *Room {
	return &Room{
		code:      code,
		src:       src,
		createdAt: createdAt,
	}
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) AddParticipant(name, connID string) (Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.addParticipantLocked(name, connID, false)
}

func (r *Room) AddManualParticipant(name string) (Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.addParticipantLocked(name, "", true)
}

// RemoveParticipant drops the participant bound to connID. It reports
// whether anything changed; removal from a started room never does.
func (r *Room) RemoveParticipant(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeParticipantLocked(connID)
}

func (r *Room) Start(revealPublicly bool) (StartSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.startLocked(revealPublicly)
}

func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Status{
		Started:     r.started,
		PlayerCount: len(r.participants),
		CreatedAt:   r.createdAt,
	}
}

// Snapshot returns the participants in join order.
func (r *Room) Snapshot() []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshotLocked()
}

// Assignment returns a copy of the drawn assignment, or nil before Start.
func (r *Room) Assignment() []Assignment {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.assignment == nil {
		return nil
	}

	out := make([]Assignment, len(r.assignment))
	copy(out, r.assignment)

	return out
}

func (r *Room) snapshotLocked() []Participant {
	out := make([]Participant, len(r.participants))
	copy(out, r.participants)

	return out
}

func (r *Room) addParticipantLocked(name, connID string, manual bool) (Participant, error) {
	if r.evicted {
		return Participant{}, ErrRoomNotFound
	}
	if r.started {
		return Participant{}, ErrAlreadyStarted
	}

	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return Participant{}, ErrInvalidName
	}

	for _, p := range r.participants {
		if strings.EqualFold(p.Name, name) {
			return Participant{}, ErrDuplicateName
		}
	}

	p := Participant{
		ID:     uuid.NewString(),
		ConnID: connID,
		Name:   name,
		Manual: manual,
	}
	r.participants = append(r.participants, p)
	r.revision++

	return p, nil
}

func (r *Room) removeParticipantLocked(connID string) bool {
	if r.evicted || r.started || connID == "" {
		return false
	}

	for i, p := range r.participants {
		if p.ConnID != connID {
			continue
		}

		r.participants = slices.Delete(r.participants, i, i+1)
		r.revision++

		return true
	}

	return false
}

func (r *Room) startLocked(revealPublicly bool) (StartSummary, error) {
	if r.evicted {
		return StartSummary{}, ErrRoomNotFound
	}
	if r.started {
		return StartSummary{}, ErrAlreadyStarted
	}
	if len(r.participants) < 2 {
		return StartSummary{}, ErrInsufficientParticipants
	}

	shuffled := Shuffle(r.src, r.participants)

	r.assignment = make([]Assignment, len(shuffled))
	for i, p := range shuffled {
		r.assignment[i] = Assignment{
			Participant: p,
			Position:    i + 1,
		}
	}
	r.started = true

	summary := StartSummary{Total: len(r.assignment)}
	if revealPublicly {
		summary.Assignments = make([]PublicAssignment, len(r.assignment))
		for i, a := range r.assignment {
			summary.Assignments[i] = PublicAssignment{
				Number: a.Position,
				Name:   a.Participant.Name,
			}
		}
	}

	return summary, nil
}
