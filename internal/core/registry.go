package core

import "sync"

// Registry is the process-wide mapping from room name to room state. Rooms
// are created lazily on first join and removed once their last member
// leaves. The registry carries its own lock so lookups are safe from any
// goroutine, though the hub is its only writer in production.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// GetOrCreate resolves the room for name, creating it if absent. Idempotent
// under concurrent calls: exactly one Room instance exists per name.
func (g *Registry) GetOrCreate(name string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if room, ok := g.rooms[name]; ok {
		return room, false
	}
	room := NewRoom(name)
	g.rooms[name] = room
	return room, true
}

// Lookup returns the room for name, or nil.
func (g *Registry) Lookup(name string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rooms[name]
}

// ReleaseIfEmpty removes room from the registry iff its member count is zero
// at the time of the check. The hub calls this on its own goroutine right
// after the evict that may have emptied the room, so no concurrent join can
// observe a half-destroyed room.
func (g *Registry) ReleaseIfEmpty(room *Room) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !room.Empty() {
		return false
	}
	if current, ok := g.rooms[room.name]; !ok || current != room {
		return false
	}
	delete(g.rooms, room.name)
	return true
}

// Len returns the number of live rooms.
func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.rooms)
}
