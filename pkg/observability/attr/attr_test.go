package attr

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", CorrelationID(ctx))
	assert.Equal(t, "abc-123", ExtractCorrelationID(ctx).Value.String())

	assert.Equal(t, "", CorrelationID(context.Background()))
	assert.Equal(t, context.Background(), WithCorrelationID(context.Background(), ""))
}

func TestCorrelationIDFromMsg(t *testing.T) {
	msg := message.NewMessage("1", nil)
	middleware.SetCorrelationID("corr", msg)

	assert.Equal(t, "corr", CorrelationIDFromMsg(msg).Value.String())
	assert.Equal(t, "", CorrelationIDFromMsg(nil).Value.String())
}

func TestError(t *testing.T) {
	assert.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	assert.Equal(t, "", Error(nil).Value.String())
}

func TestUUID(t *testing.T) {
	id := uuid.New()
	a := MatchID(id)
	assert.Equal(t, "match_id", a.Key)
	assert.Equal(t, id.String(), a.Value.String())
}
