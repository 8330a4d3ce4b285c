package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Inbound event names.
const (
	EventUserJoin        = "user:join"
	EventChannelJoin     = "channel:join"
	EventChannelLeave    = "channel:leave"
	EventDMJoin          = "dm:join"
	EventDMLeave         = "dm:leave"
	EventMessageChannel  = "message:channel"
	EventMessageDM       = "message:dm"
	EventMessageEdit     = "message:edit"
	EventMessageDelete   = "message:delete"
	EventMessageRead     = "message:read"
	EventTypingStart     = "typing:start"
	EventTypingStop      = "typing:stop"
	EventPresenceUpdate  = "presence:update"
	EventFileUploaded    = "file:uploaded"
	EventUserBanned      = "user:banned"
	EventUserMuted       = "user:muted"
	EventMessageReported = "message:reported"
)

// Outbound event names.
const (
	EventUserOnline                = "user:online"
	EventUserOffline               = "user:offline"
	EventMessageNew                = "message:new"
	EventMessageEdited             = "message:edited"
	EventMessageDeleted            = "message:deleted"
	EventTypingActive              = "typing:active"
	EventTypingInactive            = "typing:inactive"
	EventPresenceChanged           = "presence:changed"
	EventFileShared                = "file:shared"
	EventModerationUserBanned      = "moderation:user-banned"
	EventModerationUserMuted       = "moderation:user-muted"
	EventModerationMessageReported = "moderation:message-reported"
)

// Envelope is the frame exchanged with clients in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode wraps payload into an envelope frame.
func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

type UserJoin struct {
	UserID UserID `json:"userId" validate:"required"`
}

type ChannelSubscription struct {
	ChannelID ChannelID `json:"channelId" validate:"required"`
}

type DirectMessageSubscription struct {
	DirectMessageID DirectMessageID `json:"directMessageId" validate:"required"`
}

type ChannelMessage struct {
	ChannelID ChannelID `json:"channelId" validate:"required"`
	MessageID MessageID `json:"messageId" validate:"required"`
	Content   string    `json:"content"`
	AuthorID  UserID    `json:"authorId" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

type DirectMessage struct {
	DirectMessageID DirectMessageID `json:"directMessageId" validate:"required"`
	MessageID       MessageID       `json:"messageId" validate:"required"`
	Content         string          `json:"content"`
	AuthorID        UserID          `json:"authorId" validate:"required"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// MessageNew is broadcast for both channel and direct messages.
type MessageNew struct {
	MessageID       MessageID       `json:"messageId"`
	Content         string          `json:"content"`
	AuthorID        UserID          `json:"authorId"`
	ChannelID       ChannelID       `json:"channelId,omitempty"`
	DirectMessageID DirectMessageID `json:"directMessageId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	IsEdited        bool            `json:"isEdited"`
}

type MessageEdit struct {
	MessageID MessageID `json:"messageId" validate:"required"`
	Content   string    `json:"content"`
	RoomRef
}

type MessageEdited struct {
	MessageID MessageID `json:"messageId"`
	Content   string    `json:"content"`
	EditedAt  time.Time `json:"editedAt"`
}

type MessageDelete struct {
	MessageID MessageID `json:"messageId" validate:"required"`
	RoomRef
}

type MessageDeleted struct {
	MessageID MessageID `json:"messageId"`
}

type MessageReadReceipt struct {
	MessageID MessageID `json:"messageId" validate:"required"`
	UserID    UserID    `json:"userId" validate:"required"`
	RoomRef
}

type MessageRead struct {
	MessageID MessageID `json:"messageId"`
	UserID    UserID    `json:"userId"`
	ReadAt    time.Time `json:"readAt"`
}

// TypingNotice is both the inbound typing:start/stop payload and the
// outbound typing:active/inactive payload.
type TypingNotice struct {
	UserID UserID `json:"userId" validate:"required"`
	RoomRef
}

type PresenceUpdate struct {
	UserID UserID `json:"userId" validate:"required"`
	Status Status `json:"status" validate:"required,oneof=online offline away"`
}

type PresenceChanged struct {
	UserID    UserID    `json:"userId"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type UserConnectivity struct {
	UserID    UserID    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

type FileUploaded struct {
	MessageID MessageID `json:"messageId" validate:"required"`
	FileName  string    `json:"fileName"`
	FileType  string    `json:"fileType"`
	FileSize  int64     `json:"fileSize" validate:"gte=0"`
	FileURL   string    `json:"fileUrl"`
	RoomRef
}

type FileShared struct {
	MessageID MessageID `json:"messageId"`
	FileName  string    `json:"fileName"`
	FileType  string    `json:"fileType"`
	FileSize  int64     `json:"fileSize"`
	FileURL   string    `json:"fileUrl"`
}

type UserBan struct {
	UserID UserID `json:"userId" validate:"required"`
	Reason string `json:"reason"`
}

type UserBanned struct {
	UserID    UserID    `json:"userId"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

type UserMute struct {
	UserID UserID `json:"userId" validate:"required"`
	Reason string `json:"reason,omitempty"`
}

type UserMuted struct {
	UserID    UserID    `json:"userId"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type MessageReport struct {
	MessageID  MessageID `json:"messageId" validate:"required"`
	ReportedBy UserID    `json:"reportedBy" validate:"required"`
	Reason     string    `json:"reason"`
}

type MessageReported struct {
	MessageID  MessageID `json:"messageId"`
	ReportedBy UserID    `json:"reportedBy"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}
