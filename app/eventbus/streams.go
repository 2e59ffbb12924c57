package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// EnsureStream creates the stream or adds any missing subjects to it.
func (eb *EventBus) EnsureStream(ctx context.Context, name string, subjects []string) error {
	return ensureStream(ctx, eb.js, eb.logger, name, subjects)
}

func ensureStream(ctx context.Context, js jetstream.JetStream, logger *slog.Logger, name string, subjects []string) error {
	stream, err := js.Stream(ctx, name)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		_, err = js.CreateStream(ctx, jetstream.StreamConfig{
			Name:       name,
			Subjects:   subjects,
			Storage:    jetstream.FileStorage,
			Retention:  jetstream.LimitsPolicy,
			MaxAge:     7 * 24 * time.Hour,
			Duplicates: 2 * time.Minute,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream %s: %w", name, err)
		}
		logger.InfoContext(ctx, "Created JetStream stream",
			slog.String("stream", name),
			slog.Any("subjects", subjects),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check stream %s: %w", name, err)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	missing := false
	for _, s := range subjects {
		if !slices.Contains(info.Config.Subjects, s) {
			info.Config.Subjects = append(info.Config.Subjects, s)
			missing = true
		}
	}
	if !missing {
		logger.DebugContext(ctx, "Stream already has subjects", slog.String("stream", name))
		return nil
	}

	if _, err := js.UpdateStream(ctx, info.Config); err != nil {
		return fmt.Errorf("failed to update stream %s: %w", name, err)
	}
	logger.InfoContext(ctx, "Updated JetStream stream subjects",
		slog.String("stream", name),
		slog.Any("subjects", info.Config.Subjects),
	)
	return nil
}
