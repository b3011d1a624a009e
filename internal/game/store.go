/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package game

import (
	"slices"
	"strings"
	"sync"
)

// Store owns every live room. Rooms publish their summaries here so the
// global listing never has to take a room lock; lock order is room, then store.
type Store struct {
	mu        sync.Mutex
	rooms     map[string]*Room
	summaries map[string]Summary
	gateway   Gateway
}

func NewStore(gw Gateway) *Store {
	return &Store{
		rooms:     make(map[string]*Room),
		summaries: make(map[string]Summary),
		gateway:   gw,
	}
}

// getOrCreate returns the live room called name, creating an empty one if needed.
func (s *Store) getOrCreate(name string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.rooms[name]; ok {
		return r
	}

	r := newRoom(name)
	s.rooms[name] = r
	return r
}

func (s *Store) get(name string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[name]
	return r, ok
}

// Room looks up a live room by name.
func (s *Store) Room(name string) (*Room, bool) {
	return s.get(name)
}

// remove drops r from the store; a newer room with the same name is left alone.
func (s *Store) remove(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.rooms[r.name]; ok && cur == r {
		delete(s.rooms, r.name)
	}
	delete(s.summaries, r.name)

	s.broadcastLocked()
}

// publish records the summary of a room and pushes the new listing to everyone.
func (s *Store) publish(sum Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[sum.Name]; !ok {
		return
	}
	s.summaries[sum.Name] = sum

	s.broadcastLocked()
}

func (s *Store) broadcastLocked() {
	if s.gateway == nil {
		return
	}
	s.gateway.Broadcast(RoomListMessage{Rooms: s.listLocked()})
}

func (s *Store) listLocked() []Summary {
	list := make([]Summary, 0, len(s.summaries))
	for _, sum := range s.summaries {
		list = append(list, sum)
	}
	slices.SortFunc(list, func(a, b Summary) int {
		return strings.Compare(a.Name, b.Name)
	})
	return list
}

// List returns the published summaries ordered by room name.
func (s *Store) List() []Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listLocked()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.rooms)
}
