package domain

import (
	"fmt"
	"time"
)

type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	StatusAway    Status = "away"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusOnline, StatusOffline, StatusAway:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Presence is the last known status of a user.
type Presence struct {
	UserID     UserID    `json:"userId"`
	Status     Status    `json:"status"`
	LastSeenAt time.Time `json:"lastSeenAt"`
}

// Typing records the latest typer of a room. Only one typer is kept per room.
type Typing struct {
	Room      RoomKey   `json:"room"`
	UserID    UserID    `json:"userId"`
	StartedAt time.Time `json:"startedAt"`
	RoomRef
}
