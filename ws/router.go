package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"

	"relay-lab/contract"
	"relay-lab/domain"
	"relay-lab/domain/event"
	relayerrors "relay-lab/errors"
	"relay-lab/moderation"
	"relay-lab/observability"
	"relay-lab/repositories"
)

type inboundFrame struct {
	Type    string `json:"type"`
	Room    string `json:"room"`
	Text    string `json:"text"`
	Content string `json:"content"`
	Payload struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	} `json:"payload"`
}

// Router is the protocol state machine: it interprets inbound frames
// and drives the registry and the dispatcher. The only state it relies
// on is the session's room membership held by the registry.
//
// Malformed or incomplete frames are dropped without a reply; a bad
// frame must never cost the sender its session.
type Router struct {
	log        *slog.Logger
	registry   contract.IRegistry
	dispatcher contract.IDispatcher
	repository repositories.IMessageRepository
	moderator  *moderation.Moderator
	monitoring *observability.Monitoring
}

func NewRouter(log *slog.Logger, registry contract.IRegistry,
	dispatcher contract.IDispatcher, repository repositories.IMessageRepository,
	moderator *moderation.Moderator, monitoring *observability.Monitoring) *Router {
	return &Router{
		log:        log,
		registry:   registry,
		dispatcher: dispatcher,
		repository: repository,
		moderator:  moderator,
		monitoring: monitoring,
	}
}

func (rt *Router) Route(ctx context.Context, s *Session, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		rt.drop(s, relayerrors.ErrMalformedFrame)
		return
	}

	switch frame.Type {
	case "join":
		rt.handleJoin(s, frame)
	case "leave":
		rt.handleLeave(s, frame)
	case "message", "message:new":
		rt.handleMessage(ctx, s, frame)
	case "typing":
		rt.handleTyping(s, frame)
	case "event":
		rt.handleEvent(s, frame)
	default:
		rt.drop(s, relayerrors.ErrUnknownFrameType)
	}
}

func (rt *Router) handleJoin(s *Session, frame inboundFrame) {
	room := domain.RoomName(frame.Room)
	if room == "" {
		rt.drop(s, relayerrors.ErrRoomRequired)
		return
	}
	rt.registry.Join(room, s)
	rt.unicast(s, event.NewJoined(room))
}

func (rt *Router) handleLeave(s *Session, frame inboundFrame) {
	room := domain.RoomName(frame.Room)
	if room == "" {
		rt.drop(s, relayerrors.ErrRoomRequired)
		return
	}
	rt.registry.Leave(room, s)
	rt.unicast(s, event.NewLeft(room))
}

// handleMessage is the one path with an external side effect: the
// message is written to the store before fan-out. A failed write is
// logged and suppresses the broadcast for that message only; the
// session stays up.
func (rt *Router) handleMessage(ctx context.Context, s *Session, frame inboundFrame) {
	room := domain.RoomName(frame.Room)
	text := frame.Text
	if text == "" {
		text = frame.Content
	}
	if room == "" {
		rt.drop(s, relayerrors.ErrRoomRequired)
		return
	}
	if strings.TrimSpace(text) == "" {
		rt.drop(s, relayerrors.ErrEmptyContent)
		return
	}

	content := rt.moderator.Censor(text)
	info := whatlanggo.Detect(content)

	msg := domain.Message{
		ID:        uuid.New(),
		Room:      room,
		SenderID:  s.Identity().ID,
		Content:   content,
		Lang:      info.Lang.Iso6391(),
		CreatedAt: time.Now().UTC(),
	}

	if err := rt.repository.StoreMessage(ctx, msg); err != nil {
		rt.log.Error("Message write failed, skipping fan-out",
			"session_id", s.ID(),
			"room", room,
			"error", err)
		return
	}

	rt.dispatcher.Broadcast(room, event.NewMessage(msg, s.Identity()), s)
}

func (rt *Router) handleTyping(s *Session, frame inboundFrame) {
	room := domain.RoomName(frame.Room)
	if room == "" {
		rt.drop(s, relayerrors.ErrRoomRequired)
		return
	}
	rt.dispatcher.Broadcast(room, event.NewTyping(room, s.Identity()), s)
}

func (rt *Router) handleEvent(s *Session, frame inboundFrame) {
	room := domain.RoomName(frame.Room)
	if room == "" {
		rt.drop(s, relayerrors.ErrRoomRequired)
		return
	}
	if frame.Payload.Event == "" {
		rt.drop(s, relayerrors.ErrEventRequired)
		return
	}
	rt.dispatcher.Broadcast(room,
		event.NewUserEvent(room, frame.Payload.Event, frame.Payload.Data, s.Identity()), s)
}

func (rt *Router) unicast(s *Session, e event.Outbound) {
	if err := s.Deliver(e); err != nil {
		rt.monitoring.IncrDroppedSends()
		rt.log.Debug("Unicast dropped", "session_id", s.ID(), "type", e.Type, "error", err)
	}
}

func (rt *Router) drop(s *Session, cause error) {
	rt.monitoring.IncrDroppedFrames()
	rt.log.Debug("Dropping frame", "session_id", s.ID(), "reason", cause)
}
