package ratingevents

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/handlerwrapper"
	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherPublish(t *testing.T) {
	ps := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NopLogger{})
	defer ps.Close()

	ctx := attr.WithCorrelationID(context.Background(), "corr-9")
	matchID := uuid.New()

	p := NewPublisher(ps)
	require.NoError(t, p.Publish(ctx, MatchReadyV1, MatchReadyPayloadV1{MatchID: matchID}))

	msgs, err := ps.Subscribe(context.Background(), MatchReadyV1)
	require.NoError(t, err)
	msg := <-msgs
	msg.Ack()

	assert.Equal(t, MatchReadyV1, msg.Metadata.Get(handlerwrapper.TopicMetadataKey))
	assert.Equal(t, "corr-9", middleware.MessageCorrelationID(msg))

	var got MatchReadyPayloadV1
	require.NoError(t, json.Unmarshal(msg.Payload, &got))
	assert.Equal(t, matchID, got.MatchID)
}
