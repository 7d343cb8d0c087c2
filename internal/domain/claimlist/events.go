package claimlist

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/claimsview/claimsview/internal/platform/websocket"
)

// EventsTopic carries the load state of the claim records. The loading page
// subscribes to it and reloads once the records are available.
const EventsTopic = "claims"

const (
	EventLoaded     = "claims.loaded"
	EventLoadFailed = "claims.load_failed"
)

// PublishLoadState waits for the initial load to finish and publishes the
// outcome as a retained event, so pages that open later still see it.
// Nothing is published when ctx is cancelled first.
func PublishLoadState(ctx context.Context, loaded <-chan error, pub websocket.EventPublisher, logger zerolog.Logger) {
	var err error
	select {
	case <-ctx.Done():
		return
	case err = <-loaded:
	}
	if errors.Is(err, context.Canceled) {
		return
	}

	ev := websocket.Event{Type: EventLoaded, Topic: EventsTopic, Retain: true}
	if err != nil {
		ev.Type = EventLoadFailed
		ev.Data, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	if err := pub.Publish(ctx, ev); err != nil {
		logger.Warn().Err(err).Str("event", ev.Type).Msg("failed to publish load state")
	}
}
