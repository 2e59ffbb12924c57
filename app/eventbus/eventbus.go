// Package eventbus carries module events over NATS. Durable work goes through
// JetStream; status fan-out to every instance uses core NATS.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PadelPad/UnitedPadelApp-sub000/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/nkeys"
)

// ErrNoTopic is returned when a message is published without a topic
// argument or "topic" metadata.
var ErrNoTopic = errors.New("eventbus: message has no topic")

// Config selects the server, credentials and consumer naming.
type Config struct {
	URL string
	// NKeySeed authenticates every connection when set.
	NKeySeed string
	// ConsumerGroup names the durable consumers. Instances sharing it split
	// the work of each subject.
	ConsumerGroup string
	// StreamName is the stream the subscriber binds to.
	StreamName string
}

// EventBus is a Watermill publisher and subscriber over NATS JetStream.
type EventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	fanout     message.Subscriber
	js         jetstream.JetStream
	natsConn   *nc.Conn
	logger     *slog.Logger
}

var (
	_ message.Publisher  = (*EventBus)(nil)
	_ message.Subscriber = (*EventBus)(nil)
)

// NewEventBus connects to NATS and builds the JetStream publisher and
// subscriber plus a core NATS subscriber for fan-out.
func NewEventBus(ctx context.Context, cfg Config, logger *slog.Logger) (*EventBus, error) {
	opts, err := connectOptions(cfg)
	if err != nil {
		return nil, err
	}

	natsConn, err := nc.Connect(cfg.URL, opts...)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to connect to NATS", slog.Any("error", err))
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to initialize JetStream: %w", err)
	}

	wmLogger := watermill.NewSlogLogger(logger)
	marshaler := &nats.NATSMarshaler{}

	publisher, err := nats.NewPublisher(nats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: opts,
		Marshaler:   marshaler,
		JetStream: nats.JetStreamConfig{
			// Streams are provisioned by EnsureStream. The message UUID
			// becomes Nats-Msg-Id for de-duplication.
			AutoProvision: false,
			TrackMsgId:    true,
		},
	}, wmLogger)
	if err != nil {
		natsConn.Close()
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscribeOptions := []nc.SubOpt{nc.AckExplicit(), nc.DeliverAll()}
	if cfg.StreamName != "" {
		subscribeOptions = append(subscribeOptions, nc.BindStream(cfg.StreamName))
	}

	subscriber, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:               cfg.URL,
		NatsOptions:       opts,
		Unmarshaler:       marshaler,
		QueueGroupPrefix:  cfg.ConsumerGroup,
		SubscribersCount:  4,
		AckWaitTimeout:    30 * time.Second,
		CloseTimeout:      10 * time.Second,
		SubjectCalculator: queueSubjectCalculator,
		JetStream: nats.JetStreamConfig{
			AutoProvision:     false,
			SubscribeOptions:  subscribeOptions,
			DurablePrefix:     cfg.ConsumerGroup,
			DurableCalculator: ConsumerName,
		},
	}, wmLogger)
	if err != nil {
		natsConn.Close()
		publisher.Close()
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	fanout, err := nats.NewSubscriber(nats.SubscriberConfig{
		URL:               cfg.URL,
		NatsOptions:       opts,
		Unmarshaler:       marshaler,
		SubscribersCount:  1,
		CloseTimeout:      5 * time.Second,
		SubjectCalculator: fanoutSubjectCalculator,
		JetStream:         nats.JetStreamConfig{Disabled: true},
	}, wmLogger)
	if err != nil {
		natsConn.Close()
		publisher.Close()
		subscriber.Close()
		return nil, fmt.Errorf("failed to create fan-out subscriber: %w", err)
	}

	logger.InfoContext(ctx, "Connected to NATS",
		slog.String("url", natsConn.ConnectedUrlRedacted()),
		slog.Bool("nkey_auth", cfg.NKeySeed != ""),
	)

	return &EventBus{
		publisher:  publisher,
		subscriber: subscriber,
		fanout:     fanout,
		js:         js,
		natsConn:   natsConn,
		logger:     logger,
	}, nil
}

// Publish sends msgs to topic. When topic is empty each message goes to the
// topic named by its "topic" metadata, which is how router handlers with
// several outputs route their results.
func (eb *EventBus) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}
		target := topic
		if target == "" {
			target = msg.Metadata.Get(handlerwrapper.TopicMetadataKey)
		}
		if target == "" {
			return fmt.Errorf("%w (message %s)", ErrNoTopic, msg.UUID)
		}
		if err := eb.publisher.Publish(target, msg); err != nil {
			eb.logger.Error("Failed to publish message",
				slog.String("topic", target),
				slog.String("message_id", msg.UUID),
				slog.Any("error", err),
			)
			return fmt.Errorf("failed to publish to %s: %w", target, err)
		}
		eb.logger.Debug("Message published",
			slog.String("topic", target),
			slog.String("message_id", msg.UUID),
		)
	}
	return nil
}

// Subscribe consumes topic through the shared durable consumer.
func (eb *EventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	eb.logger.InfoContext(ctx, "Subscribing to subject", slog.String("subject", topic))
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject %s: %w", topic, err)
	}
	return messages, nil
}

// Fanout returns a subscriber that delivers every message to every
// instance. Nothing is persisted, so messages sent while an instance is down
// are not replayed to it.
func (eb *EventBus) Fanout() message.Subscriber {
	return eb.fanout
}

// JetStream exposes the stream management API.
func (eb *EventBus) JetStream() jetstream.JetStream {
	return eb.js
}

// HealthCheck reports whether the management connection is up.
func (eb *EventBus) HealthCheck() error {
	if eb.natsConn == nil || !eb.natsConn.IsConnected() {
		return errors.New("eventbus: not connected to NATS")
	}
	return nil
}

// Close closes all NATS and Watermill resources.
func (eb *EventBus) Close() error {
	var errs []error
	for name, c := range map[string]interface{ Close() error }{
		"publisher":  eb.publisher,
		"subscriber": eb.subscriber,
		"fanout":     eb.fanout,
	} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			eb.logger.Error("Error closing NATS "+name, slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	if eb.natsConn != nil {
		eb.natsConn.Close()
	}
	return errors.Join(errs...)
}

func connectOptions(cfg Config) ([]nc.Option, error) {
	opts := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.MaxReconnects(-1),
		nc.ReconnectWait(2 * time.Second),
		nc.Timeout(10 * time.Second),
	}
	if cfg.NKeySeed != "" {
		opt, err := nkeyOption(cfg.NKeySeed)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	return opts, nil
}

// nkeyOption signs the server nonce with the user seed.
func nkeyOption(seed string) (nc.Option, error) {
	kp, err := nkeys.FromSeed([]byte(seed))
	if err != nil {
		return nil, fmt.Errorf("invalid NATS nkey seed: %w", err)
	}
	pub, err := kp.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("invalid NATS nkey seed: %w", err)
	}
	return nc.Nkey(pub, kp.Sign), nil
}

var consumerNameReplacer = strings.NewReplacer(".", "_", "*", "any", ">", "all", " ", "_")

// ConsumerName derives the durable consumer of topic. NATS consumer names
// cannot contain dots, so subject tokens are joined with underscores.
func ConsumerName(group, topic string) string {
	if group == "" {
		return ""
	}
	return consumerNameReplacer.Replace(group + "_" + topic)
}

// queueSubjectCalculator uses the durable name as the queue group, which
// JetStream requires for queue consumers.
func queueSubjectCalculator(group, topic string) *nats.SubjectDetail {
	return &nats.SubjectDetail{Primary: topic, QueueGroup: ConsumerName(group, topic)}
}

func fanoutSubjectCalculator(_, topic string) *nats.SubjectDetail {
	return &nats.SubjectDetail{Primary: topic}
}
