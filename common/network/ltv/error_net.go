package ltv

import "errors"

var (
	ErrInvalidPacket         = errors.New("invalid net packet")
	ErrRepeatRegisterHandler = errors.New("repeat register handler")
	ErrInvalidCommandID      = errors.New("invalid command id")
	ErrConnectionClosed      = errors.New("connection is closed")
	ErrPacketDataEmpty       = errors.New("pack data is empty")
	ErrServerRepeatClose     = errors.New("server repeat close")
)
