/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import "sync"

// Binding ties a connection to the room it has joined.
type Binding struct {
	Room     string
	Nickname string
}

// Registry tracks which connection is currently bound to which room.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]Binding
}

func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[string]Binding),
	}
}

func (r *Registry) Bind(connID, room, nickname string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bindings[connID] = Binding{Room: room, Nickname: nickname}
}

// Unbind removes and returns the binding of connID, if any.
func (r *Registry) Unbind(connID string) (Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bindings[connID]
	if ok {
		delete(r.bindings, connID)
	}
	return b, ok
}

func (r *Registry) Lookup(connID string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bindings[connID]
	return b, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.bindings)
}
