// Package registry holds the coordinator's in-memory state: which connection
// belongs to which user, the last known presence of every user and the
// current typer of every room.
package registry

import (
	"sync"

	"github.com/maxswackygames-dev/nexus-chat/domain"
)

// Connections maps users to their live connection. A user has at most one
// entry; a second connection replaces the first. The reverse index keyed by
// connection id keeps Unregister O(1).
type Connections struct {
	byUser map[domain.UserID]domain.Connection
	byConn map[string]domain.UserID
	mu     sync.RWMutex
}

func NewConnections() *Connections {
	return &Connections{
		byUser: make(map[domain.UserID]domain.Connection),
		byConn: make(map[string]domain.UserID),
	}
}

// Register stores conn for userID and returns the connection it replaced, if any.
func (c *Connections) Register(userID domain.UserID, conn domain.Connection) (domain.Connection, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The same socket announcing a different user drops its old identity.
	if owner, ok := c.byConn[conn.ID()]; ok && owner != userID {
		if cur, ok := c.byUser[owner]; ok && cur.ID() == conn.ID() {
			delete(c.byUser, owner)
		}
	}

	prev, replaced := c.byUser[userID]
	if replaced && prev.ID() != conn.ID() {
		delete(c.byConn, prev.ID())
	} else {
		replaced = false
	}

	c.byUser[userID] = conn
	c.byConn[conn.ID()] = userID
	return prev, replaced
}

// Unregister removes conn. It reports the user the connection belonged to, or
// false when conn is unknown or was already replaced by a newer connection.
func (c *Connections) Unregister(conn domain.Connection) (domain.UserID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	userID, ok := c.byConn[conn.ID()]
	if !ok {
		return 0, false
	}
	delete(c.byConn, conn.ID())
	if cur, ok := c.byUser[userID]; ok && cur.ID() == conn.ID() {
		delete(c.byUser, userID)
	}
	return userID, true
}

func (c *Connections) Lookup(userID domain.UserID) (domain.Connection, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	conn, ok := c.byUser[userID]
	return conn, ok
}

func (c *Connections) UserOf(conn domain.Connection) (domain.UserID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	userID, ok := c.byConn[conn.ID()]
	return userID, ok
}

func (c *Connections) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byUser)
}
