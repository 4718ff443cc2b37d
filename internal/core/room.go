package core

import "time"

// Room groups connections subscribed to the same channel. All mutation runs
// on the hub goroutine, which serializes admits and evicts per room; Room
// itself carries no lock.
type Room struct {
	name    string
	created time.Time
	members map[*Conn]struct{}
}

// NewRoom constructs a room with no members.
func NewRoom(name string) *Room {
	return &Room{
		name:    name,
		created: time.Now(),
		members: make(map[*Conn]struct{}),
	}
}

// Name returns the room's unique key.
func (r *Room) Name() string {
	return r.name
}

// Admit inserts a connection into the member set. Returns false if it is
// already a member; the set never holds a duplicate.
func (r *Room) Admit(c *Conn) bool {
	if _, exists := r.members[c]; exists {
		return false
	}
	r.members[c] = struct{}{}
	return true
}

// Evict removes a connection from the member set. Evicting a non-member is
// a no-op, since a disconnect can race an explicit leave.
func (r *Room) Evict(c *Conn) bool {
	if _, exists := r.members[c]; !exists {
		return false
	}
	delete(r.members, c)
	return true
}

// Snapshot returns the member set as of this call. Dispatch iterates the
// snapshot, so an admit that commits before a dispatch begins is always
// included and one that commits after is always excluded, never partially.
func (r *Room) Snapshot() []*Conn {
	members := make([]*Conn, 0, len(r.members))
	for c := range r.members {
		members = append(members, c)
	}
	return members
}

// Len returns the current member count.
func (r *Room) Len() int {
	return len(r.members)
}

// Empty returns true if no connections are in the room.
func (r *Room) Empty() bool {
	return len(r.members) == 0
}
