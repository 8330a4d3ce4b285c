package domain

import (
	"strconv"
	"strings"
)

type (
	UserID          int64
	ChannelID       int64
	DirectMessageID int64
	MessageID       int64
)

// RoomKey names a channel or direct-message room. The same key is used for
// transport groups and typing records.
type RoomKey string

const (
	channelPrefix = "channel_"
	dmPrefix      = "dm_"
)

func ChannelRoom(id ChannelID) RoomKey {
	return RoomKey(channelPrefix + strconv.FormatInt(int64(id), 10))
}

func DirectMessageRoom(id DirectMessageID) RoomKey {
	return RoomKey(dmPrefix + strconv.FormatInt(int64(id), 10))
}

// RoomFor prefers the channel when both ids are set.
func RoomFor(channelID ChannelID, dmID DirectMessageID) (RoomKey, bool) {
	switch {
	case channelID != 0:
		return ChannelRoom(channelID), true
	case dmID != 0:
		return DirectMessageRoom(dmID), true
	default:
		return "", false
	}
}

// IsChannel reports whether the key addresses a channel room.
func (k RoomKey) IsChannel() bool {
	return strings.HasPrefix(string(k), channelPrefix)
}

// IsDirectMessage reports whether the key addresses a direct-message room.
func (k RoomKey) IsDirectMessage() bool {
	return strings.HasPrefix(string(k), dmPrefix)
}

func (k RoomKey) String() string { return string(k) }

// RoomRef carries the optional room discriminators shared by room-scoped payloads.
type RoomRef struct {
	ChannelID       ChannelID       `json:"channelId,omitempty"`
	DirectMessageID DirectMessageID `json:"directMessageId,omitempty"`
}

func (r RoomRef) Room() (RoomKey, bool) {
	return RoomFor(r.ChannelID, r.DirectMessageID)
}
