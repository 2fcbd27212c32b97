// Package realtime tracks which users are online and pushes events to their
// websocket connections.
package realtime

import (
	"sort"
	"sync"
)

// Registry maps a user id to the id of that user's current connection.
// A user has at most one entry; the most recent connection wins.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]string
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]string)}
}

// Register points userID at connID and returns the connection it replaced, if any.
func (r *Registry) Register(userID, connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.conns[userID]
	r.conns[userID] = connID
	return prev, ok
}

// Unregister removes userID only while it still points at connID, so a stale
// disconnect cannot drop a newer connection. It reports whether it removed.
func (r *Registry) Unregister(userID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.conns[userID]; ok && cur == connID {
		delete(r.conns, userID)
		return true
	}
	return false
}

func (r *Registry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.conns[userID]
	return id, ok
}

// Online returns the ids of connected users in sorted order.
func (r *Registry) Online() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
