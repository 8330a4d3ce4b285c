package domain

import "errors"

var (
	ErrUnknownEvent   = errors.New("unknown event")
	ErrNoRoom         = errors.New("payload names neither a channel nor a direct message")
	ErrInvalidStatus  = errors.New("invalid presence status")
	ErrSendBufferFull = errors.New("send buffer full")
)
