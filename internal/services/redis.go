package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ParcelUpdatesChannel carries parcel status events between API instances.
const ParcelUpdatesChannel = "parcel:updates"

// NewRedisClient parses url, instruments the client for New Relic when
// tracing is on, and checks the connection.
func NewRedisClient(ctx context.Context, url string, tracing bool) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}

	client := redis.NewClient(opt)
	if tracing {
		client.AddHook(nrredis.NewHook(opt))
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "connect to redis")
	}
	return client, nil
}

// ParcelPublisher announces parcel status changes.
type ParcelPublisher interface {
	PublishParcelStatus(ctx context.Context, u ParcelStatusUpdate) error
}

// RedisParcelEvents publishes parcel events on Redis and relays them from
// Redis to the local websocket hub.
type RedisParcelEvents struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRedisParcelEvents(client *redis.Client, logger zerolog.Logger) *RedisParcelEvents {
	return &RedisParcelEvents{client: client, logger: logger}
}

func (e *RedisParcelEvents) PublishParcelStatus(ctx context.Context, u ParcelStatusUpdate) error {
	data, err := json.Marshal(WebSocketMessage{Type: MessageParcelStatus, Data: u})
	if err != nil {
		return errors.Wrap(err, "marshal parcel event")
	}
	if err := e.client.Publish(ctx, ParcelUpdatesChannel, data).Err(); err != nil {
		return errors.Wrap(err, "publish parcel event")
	}
	return nil
}

// Relay forwards every event on ParcelUpdatesChannel to the owner's clients
// on hub. It returns when ctx is done.
func (e *RedisParcelEvents) Relay(ctx context.Context, hub *Hub) error {
	sub := e.client.Subscribe(ctx, ParcelUpdatesChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return errors.Wrap(err, "subscribe to parcel events")
	}
	e.logger.Info().Str("channel", ParcelUpdatesChannel).Msg("relaying parcel events")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event struct {
				Data ParcelStatusUpdate `json:"data"`
			}
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				e.logger.Warn().Err(err).Msg("dropping malformed parcel event")
				continue
			}
			hub.SendToUser(event.Data.Email, []byte(msg.Payload))
		}
	}
}

// LocalParcelEvents delivers events straight to the hub of this process.
// It is used when no Redis is configured.
type LocalParcelEvents struct {
	hub *Hub
}

func NewLocalParcelEvents(hub *Hub) *LocalParcelEvents {
	return &LocalParcelEvents{hub: hub}
}

func (e *LocalParcelEvents) PublishParcelStatus(_ context.Context, u ParcelStatusUpdate) error {
	return e.hub.SendParcelStatus(u)
}
