/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package rooms

import (
	"sync"
)

// scriptedSource replays vals in order, wrapping around, reduced mod n.
type scriptedSource struct {
	mu   sync.Mutex
	vals []int
	i    int
}

func script(vals ...int) *scriptedSource {
	return &scriptedSource{vals: vals}
}

func (s *scriptedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.vals[s.i%len(s.vals)] % n
	s.i++

	return v
}

type delivery struct {
	to  string
	msg any
}

// fakeTransport records every message per recipient.
type fakeTransport struct {
	mu     sync.Mutex
	groups map[string]map[string]bool
	sent   []delivery
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{groups: make(map[string]map[string]bool)}
}

func (f *fakeTransport) Join(group, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.groups[group] == nil {
		f.groups[group] = make(map[string]bool)
	}
	f.groups[group][connID] = true
}

func (f *fakeTransport) Leave(group, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.groups[group], connID)
}

func (f *fakeTransport) Send(connID string, msg any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, delivery{to: connID, msg: msg})
}

func (f *fakeTransport) SendGroup(group string, msg any) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for connID := range f.groups[group] {
		f.sent = append(f.sent, delivery{to: connID, msg: msg})
	}
}

func (f *fakeTransport) messagesFor(connID string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []any
	for _, d := range f.sent {
		if d.to == connID {
			out = append(out, d.msg)
		}
	}

	return out
}

func (f *fakeTransport) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.sent)
}

func (f *fakeTransport) members(group string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.groups[group])
}

// lastOf returns the most recent message of type T sent to connID.
func lastOf[T any](f *fakeTransport, connID string) (T, bool) {
	msgs := f.messagesFor(connID)
	for i := len(msgs) - 1; i >= 0; i-- {
		if m, ok := msgs[i].(T); ok {
			return m, true
		}
	}

	var zero T
	return zero, false
}

func allOf[T any](f *fakeTransport, connID string) []T {
	var out []T
	for _, m := range f.messagesFor(connID) {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}

	return out
}
