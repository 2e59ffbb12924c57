package ratingevents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/handlerwrapper"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// Publisher publishes rating facts as JSON Watermill messages.
type Publisher struct {
	pub message.Publisher
}

func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

// Publish marshals payload and sends it on topic, carrying the context's
// correlation id.
func (p *Publisher) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("ratingevents: marshal %s: %w", topic, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)
	msg.Metadata.Set(handlerwrapper.TopicMetadataKey, topic)
	if id := attr.CorrelationID(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}
	if err := p.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("ratingevents: publish %s: %w", topic, err)
	}
	return nil
}
