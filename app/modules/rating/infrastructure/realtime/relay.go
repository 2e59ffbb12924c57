package ratingrealtime

import (
	"encoding/json"
	"log/slog"

	ratingevents "github.com/PadelPad/UnitedPadelApp-sub000/app/modules/rating/events"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/handlerwrapper"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Relay forwards status facts from the event bus to the hub.
type Relay struct {
	hub    *Hub
	logger *slog.Logger
}

func NewRelay(hub *Hub, logger *slog.Logger) *Relay {
	return &Relay{hub: hub, logger: logger}
}

// Register adds one consumer per status subject to router. subscriber should
// deliver every message to every instance, so each instance can serve the
// clients connected to it.
func (r *Relay) Register(router *message.Router, subscriber message.Subscriber) {
	for _, topic := range ratingevents.StatusSubjects {
		router.AddNoPublisherHandler("rating.realtime."+topic, topic, subscriber, r.Handle)
	}
}

// Handle broadcasts msg to the room named by its match_id. Messages without
// one are acked and ignored.
func (r *Relay) Handle(msg *message.Message) error {
	var env struct {
		MatchID uuid.UUID `json:"match_id"`
	}
	if err := json.Unmarshal(msg.Payload, &env); err != nil || env.MatchID == uuid.Nil {
		r.logger.Warn("Status message without match_id, skipping",
			attr.String("message_id", msg.UUID),
		)
		return nil
	}

	topic := message.SubscribeTopicFromCtx(msg.Context())
	if topic == "" {
		topic = msg.Metadata.Get(handlerwrapper.TopicMetadataKey)
	}

	n := r.hub.Broadcast(env.MatchID, topic, json.RawMessage(msg.Payload))
	r.logger.Debug("Relayed match status",
		attr.String("topic", topic),
		attr.MatchID(env.MatchID),
		attr.Int("clients", n),
	)
	return nil
}
