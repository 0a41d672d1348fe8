package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	pkgevents "github.com/floroz/bidmaster/pkg/events"
)

const (
	liveFeedQueue = "auction_live_feed"

	// ChannelPrefix is followed by the auction id, e.g. auction_events:{id}
	ChannelPrefix = "auction_events:"
)

// errUndecodable marks messages that can never be processed
var errUndecodable = errors.New("undecodable event")

// FeedPublisher fans an event out to clients watching an auction
type FeedPublisher interface {
	PublishAuctionEvent(ctx context.Context, auctionID uuid.UUID, payload []byte) error
}

// SnapshotInvalidator drops cached auction snapshots
type SnapshotInvalidator interface {
	Invalidate(ctx context.Context, auctionIDs ...uuid.UUID)
}

// FeedMessage is what live-feed subscribers receive
type FeedMessage struct {
	EventID    string         `json:"event_id"`
	Type       string         `json:"type"`
	AuctionID  string         `json:"auction_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// RedisFeedPublisher publishes feed messages on per-auction Redis channels
type RedisFeedPublisher struct {
	client *redis.Client
}

func NewRedisFeedPublisher(client *redis.Client) *RedisFeedPublisher {
	return &RedisFeedPublisher{client: client}
}

func (p *RedisFeedPublisher) PublishAuctionEvent(ctx context.Context, auctionID uuid.UUID, payload []byte) error {
	return p.client.Publish(ctx, ChannelPrefix+auctionID.String(), payload).Err()
}

// LiveFeedConsumer consumes every auction event, invalidates the cached
// snapshot of the affected auction and forwards the event to its live feed
type LiveFeedConsumer struct {
	conn      *amqp.Connection
	feed      FeedPublisher
	snapshots SnapshotInvalidator
	logger    *slog.Logger
}

// NewLiveFeedConsumer creates a new live feed consumer
func NewLiveFeedConsumer(conn *amqp.Connection, feed FeedPublisher, snapshots SnapshotInvalidator, logger *slog.Logger) *LiveFeedConsumer {
	return &LiveFeedConsumer{
		conn:      conn,
		feed:      feed,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Run starts the consumer loop. It returns nil once ctx is cancelled.
func (c *LiveFeedConsumer) Run(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if setupErr := c.setupRabbitMQ(ch); setupErr != nil {
		return fmt.Errorf("failed to setup rabbitmq: %w", setupErr)
	}

	msgs, err := ch.Consume(
		liveFeedQueue, // queue
		"",            // consumer tag
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("Live feed consumer waiting for messages...")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("channel closed")
			}

			err := c.Handle(ctx, d.Body)
			switch {
			case err == nil:
				if ackErr := d.Ack(false); ackErr != nil {
					c.logger.Error("Failed to Ack message", "error", ackErr)
				}
			case errors.Is(err, errUndecodable):
				c.logger.Error("Dropping event", "routing_key", d.RoutingKey, "error", err)
				if nackErr := d.Nack(false, false); nackErr != nil {
					c.logger.Error("Failed to Nack message", "error", nackErr)
				}
			default:
				c.logger.Error("Failed to forward event", "routing_key", d.RoutingKey, "error", err)
				if nackErr := d.Nack(false, true); nackErr != nil {
					c.logger.Error("Failed to Nack message (requeue)", "error", nackErr)
				}
			}
		}
	}
}

// Handle processes one broker message
func (c *LiveFeedConsumer) Handle(ctx context.Context, body []byte) error {
	env, err := pkgevents.UnmarshalEnvelope(body)
	if err != nil {
		return fmt.Errorf("%w: %w", errUndecodable, err)
	}

	c.snapshots.Invalidate(ctx, env.AuctionID)

	payload, err := json.Marshal(FeedMessage{
		EventID:    env.EventID.String(),
		Type:       env.Type,
		AuctionID:  env.AuctionID.String(),
		OccurredAt: env.OccurredAt,
		Data:       env.Data,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", errUndecodable, err)
	}

	if err := c.feed.PublishAuctionEvent(ctx, env.AuctionID, payload); err != nil {
		return fmt.Errorf("failed to publish to live feed: %w", err)
	}
	return nil
}

func (c *LiveFeedConsumer) setupRabbitMQ(ch *amqp.Channel) error {
	if err := pkgevents.DeclareExchange(ch); err != nil {
		return err
	}

	q, err := ch.QueueDeclare(
		liveFeedQueue, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return err
	}

	for _, key := range []string{"bid.*", "auction.*"} {
		if err := ch.QueueBind(q.Name, key, pkgevents.ExchangeAuctionEvents, false, nil); err != nil {
			return err
		}
	}
	return nil
}
