package handlerwrapper

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type greeting struct {
	Name string `json:"name"`
}

func TestWrapTransformingTyped(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracer := noop.NewTracerProvider().Tracer("test")

	tests := []struct {
		name       string
		payload    string
		handler    func(ctx context.Context, p *greeting) ([]Result, error)
		wantErr    bool
		wantTopics []string
	}{
		{
			name:    "decodes payload and publishes results",
			payload: `{"name":"ana"}`,
			handler: func(ctx context.Context, p *greeting) ([]Result, error) {
				assert.Equal(t, "ana", p.Name)
				assert.Equal(t, "corr-1", attr.CorrelationID(ctx))
				assert.Equal(t, "inbox.1", ctx.Value(CtxKeyReplyTo))
				return []Result{{Topic: "greeted", Payload: p, Metadata: map[string]string{"k": "v"}}}, nil
			},
			wantTopics: []string{"greeted"},
		},
		{
			name:    "poison payload is acked",
			payload: `{not json`,
			handler: func(context.Context, *greeting) ([]Result, error) {
				t.Fatal("handler must not run")
				return nil, nil
			},
		},
		{
			name:    "handler error is returned for retry",
			payload: `{"name":"x"}`,
			handler: func(context.Context, *greeting) ([]Result, error) {
				return nil, errors.New("db down")
			},
			wantErr: true,
		},
		{
			name:    "result without topic is an error",
			payload: `{"name":"x"}`,
			handler: func(context.Context, *greeting) ([]Result, error) {
				return []Result{{Payload: 1}}, nil
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := message.NewMessage("m1", []byte(tt.payload))
			middleware.SetCorrelationID("corr-1", msg)
			msg.Metadata.Set("reply_to", "inbox.1")

			h := WrapTransformingTyped("test.handler", logger, tracer, nil, tt.handler)
			out, err := h(msg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Len(t, out, len(tt.wantTopics))
			for i, m := range out {
				assert.Equal(t, tt.wantTopics[i], m.Metadata.Get(TopicMetadataKey))
				assert.Equal(t, "corr-1", middleware.MessageCorrelationID(m))
				assert.Equal(t, "v", m.Metadata.Get("k"))
			}
		})
	}
}
