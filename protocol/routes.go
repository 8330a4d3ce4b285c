package protocol

import (
	"fmt"
	"log/slog"

	"github.com/maxswackygames-dev/nexus-chat/domain"
)

func (d *Dispatcher) routes() map[string]handlerFunc {
	return map[string]handlerFunc{
		domain.EventUserJoin:        on(d, d.userJoin),
		domain.EventChannelJoin:     on(d, d.channelJoin),
		domain.EventChannelLeave:    on(d, d.channelLeave),
		domain.EventDMJoin:          on(d, d.dmJoin),
		domain.EventDMLeave:         on(d, d.dmLeave),
		domain.EventMessageChannel:  on(d, d.channelMessage),
		domain.EventMessageDM:       on(d, d.directMessage),
		domain.EventMessageEdit:     on(d, d.messageEdit),
		domain.EventMessageDelete:   on(d, d.messageDelete),
		domain.EventMessageRead:     on(d, d.messageRead),
		domain.EventTypingStart:     on(d, d.typingStart),
		domain.EventTypingStop:      on(d, d.typingStop),
		domain.EventPresenceUpdate:  on(d, d.presenceUpdate),
		domain.EventFileUploaded:    on(d, d.fileUploaded),
		domain.EventUserBanned:      on(d, d.userBanned),
		domain.EventUserMuted:       on(d, d.userMuted),
		domain.EventMessageReported: on(d, d.messageReported),
	}
}

func (d *Dispatcher) userJoin(conn domain.Connection, p domain.UserJoin) error {
	d.router.Attach(conn)
	if prev, replaced := d.conns.Register(p.UserID, conn); replaced {
		slog.Info("connection replaced", "userId", p.UserID, "clientId", conn.ID(), "previousClientId", prev.ID())
	}
	presence := d.presence.SetStatus(p.UserID, domain.StatusOnline)
	slog.Info("user joined", "userId", p.UserID, "clientId", conn.ID())

	d.announce(domain.EventUserOnline, domain.UserConnectivity{UserID: p.UserID, Timestamp: presence.LastSeenAt})
	d.announce(domain.EventPresenceChanged, domain.PresenceChanged{UserID: p.UserID, Status: presence.Status, Timestamp: presence.LastSeenAt})
	return nil
}

func (d *Dispatcher) channelJoin(conn domain.Connection, p domain.ChannelSubscription) error {
	d.router.Join(conn, domain.ChannelRoom(p.ChannelID))
	return nil
}

func (d *Dispatcher) channelLeave(conn domain.Connection, p domain.ChannelSubscription) error {
	d.router.Leave(conn, domain.ChannelRoom(p.ChannelID))
	return nil
}

func (d *Dispatcher) dmJoin(conn domain.Connection, p domain.DirectMessageSubscription) error {
	d.router.Join(conn, domain.DirectMessageRoom(p.DirectMessageID))
	return nil
}

func (d *Dispatcher) dmLeave(conn domain.Connection, p domain.DirectMessageSubscription) error {
	d.router.Leave(conn, domain.DirectMessageRoom(p.DirectMessageID))
	return nil
}

func (d *Dispatcher) channelMessage(_ domain.Connection, p domain.ChannelMessage) error {
	return d.toRoom(domain.ChannelRoom(p.ChannelID), domain.EventMessageNew, domain.MessageNew{
		MessageID: p.MessageID,
		Content:   p.Content,
		AuthorID:  p.AuthorID,
		ChannelID: p.ChannelID,
		CreatedAt: p.CreatedAt,
	})
}

func (d *Dispatcher) directMessage(_ domain.Connection, p domain.DirectMessage) error {
	return d.toRoom(domain.DirectMessageRoom(p.DirectMessageID), domain.EventMessageNew, domain.MessageNew{
		MessageID:       p.MessageID,
		Content:         p.Content,
		AuthorID:        p.AuthorID,
		DirectMessageID: p.DirectMessageID,
		CreatedAt:       p.CreatedAt,
	})
}

func (d *Dispatcher) messageEdit(_ domain.Connection, p domain.MessageEdit) error {
	room, ok := p.Room()
	if !ok {
		return domain.ErrNoRoom
	}
	return d.toRoom(room, domain.EventMessageEdited, domain.MessageEdited{
		MessageID: p.MessageID,
		Content:   p.Content,
		EditedAt:  d.now(),
	})
}

func (d *Dispatcher) messageDelete(_ domain.Connection, p domain.MessageDelete) error {
	room, ok := p.Room()
	if !ok {
		return domain.ErrNoRoom
	}
	return d.toRoom(room, domain.EventMessageDeleted, domain.MessageDeleted{MessageID: p.MessageID})
}

func (d *Dispatcher) messageRead(_ domain.Connection, p domain.MessageReadReceipt) error {
	room, ok := p.Room()
	if !ok {
		return domain.ErrNoRoom
	}
	return d.toRoom(room, domain.EventMessageRead, domain.MessageRead{
		MessageID: p.MessageID,
		UserID:    p.UserID,
		ReadAt:    d.now(),
	})
}

func (d *Dispatcher) typingStart(_ domain.Connection, p domain.TypingNotice) error {
	room, ok := p.Room()
	if !ok {
		return domain.ErrNoRoom
	}
	d.typing.Start(room, p.UserID, p.RoomRef)
	return d.toRoom(room, domain.EventTypingActive, p)
}

// typingStop clears the room whichever user asks, and always notifies the room.
func (d *Dispatcher) typingStop(_ domain.Connection, p domain.TypingNotice) error {
	room, ok := p.Room()
	if !ok {
		return domain.ErrNoRoom
	}
	d.typing.Stop(room)
	return d.toRoom(room, domain.EventTypingInactive, p)
}

func (d *Dispatcher) presenceUpdate(_ domain.Connection, p domain.PresenceUpdate) error {
	presence := d.presence.SetStatus(p.UserID, p.Status)
	d.announce(domain.EventPresenceChanged, domain.PresenceChanged{
		UserID:    presence.UserID,
		Status:    presence.Status,
		Timestamp: presence.LastSeenAt,
	})
	return nil
}

func (d *Dispatcher) fileUploaded(_ domain.Connection, p domain.FileUploaded) error {
	room, ok := p.Room()
	if !ok {
		return domain.ErrNoRoom
	}
	return d.toRoom(room, domain.EventFileShared, domain.FileShared{
		MessageID: p.MessageID,
		FileName:  p.FileName,
		FileType:  p.FileType,
		FileSize:  p.FileSize,
		FileURL:   p.FileURL,
	})
}

func (d *Dispatcher) userBanned(_ domain.Connection, p domain.UserBan) error {
	d.announce(domain.EventModerationUserBanned, domain.UserBanned{UserID: p.UserID, Reason: p.Reason, Timestamp: d.now()})
	return nil
}

func (d *Dispatcher) userMuted(_ domain.Connection, p domain.UserMute) error {
	d.announce(domain.EventModerationUserMuted, domain.UserMuted{UserID: p.UserID, Reason: p.Reason, Timestamp: d.now()})
	return nil
}

func (d *Dispatcher) messageReported(_ domain.Connection, p domain.MessageReport) error {
	d.announce(domain.EventModerationMessageReported, domain.MessageReported{
		MessageID:  p.MessageID,
		ReportedBy: p.ReportedBy,
		Reason:     p.Reason,
		Timestamp:  d.now(),
	})
	return nil
}

func (d *Dispatcher) toRoom(room domain.RoomKey, event string, payload any) error {
	if err := d.router.Broadcast(room, event, payload); err != nil {
		return fmt.Errorf("broadcast to %s: %w", room, err)
	}
	return nil
}
