/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package rooms

import (
	"context"
	"sync"
	"time"
)

// maxCreateAttempts bounds the regenerate-on-collision loop in Create.
const maxCreateAttempts = 1000

// Registry owns every live Room, keyed by canonical code. Rooms are created
// only through Create and removed only by eviction.
type Registry struct {
	rooms sync.Map // string -> *Room
	codes *CodeGenerator
	src   Source
	now   func() time.Time
}

// NewRegistry returns an empty registry. A nil clock means time.Now.
func NewRegistry(src Source, clock func() time.Time) *Registry {
	if clock == nil {
		clock = time.Now
	}

	return &Registry{
		codes: NewCodeGenerator(src),
		src:   src,
		now:   clock,
	}
}

// Create allocates a fresh OPEN room under an unused code.
func (reg *Registry) Create() (*Room, error) {
	for range maxCreateAttempts {
		code := reg.codes.Generate()
		room := newRoom(code, reg.src, reg.now())

		if _, loaded := reg.rooms.LoadOrStore(code, room); !loaded {
			return room, nil
		}
	}

	return nil, ErrCodeSpaceExhausted
}

func (reg *Registry) Lookup(code string) (*Room, error) {
	v, ok := reg.rooms.Load(CanonicalCode(code))
	if !ok {
		return nil, ErrRoomNotFound
	}

	return v.(*Room), nil
}

func (reg *Registry) Len() int {
	n := 0
	reg.rooms.Range(func(_, _ any) bool {
		n++
		return true
	})

	return n
}

// EvictExpired removes every room created more than maxAge before now and
// returns their codes. Each room is marked evicted under its own lock, so an
// operation already holding the room finishes first and later ones see
// ErrRoomNotFound.
func (reg *Registry) EvictExpired(now time.Time, maxAge time.Duration) []string {
	var evicted []string

	reg.rooms.Range(func(k, v any) bool {
		room := v.(*Room)

		room.mu.Lock()
		if now.Sub(room.createdAt) > maxAge {
			room.evicted = true
			reg.rooms.CompareAndDelete(k, room)
			evicted = append(evicted, room.code)
		}
		room.mu.Unlock()

		return true
	})

	return evicted
}

// Run sweeps expired rooms every interval until ctx is done. onEvict, if
// non-nil, is called once per evicted code outside any room lock.
func (reg *Registry) Run(ctx context.Context, interval, maxAge time.Duration, onEvict func(code string)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, code := range reg.EvictExpired(reg.now(), maxAge) {
				if onEvict != nil {
					onEvict(code)
				}
			}
		}
	}
}
