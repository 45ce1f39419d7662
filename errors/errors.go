package errors

import "fmt"

var (
	// Authentication failures. Fatal to the connection attempt only.
	ErrMissingCredential = fmt.Errorf("missing credential")
	ErrInvalidCredential = fmt.Errorf("invalid credential")
	ErrNoSecret          = fmt.Errorf("no signing secret configured")

	// Delivery failures. Isolated per recipient, never escalated.
	ErrSessionClosed  = fmt.Errorf("session closed")
	ErrSendBufferFull = fmt.Errorf("send buffer full")

	// Protocol failures. The offending frame is dropped without a reply.
	ErrMalformedFrame   = fmt.Errorf("malformed frame")
	ErrUnknownFrameType = fmt.Errorf("unknown frame type")
	ErrEmptyContent     = fmt.Errorf("empty message content")

	// Validation failures. Shared by the frame router and the HTTP ingress.
	ErrRoomRequired  = fmt.Errorf("room is required")
	ErrEventRequired = fmt.Errorf("event is required")

	ErrEmptyWords = fmt.Errorf("no words have been found")
)
