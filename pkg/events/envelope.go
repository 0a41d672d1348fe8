package events

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Event types published on the auction exchange. They double as routing keys.
const (
	EventTypeBidPlaced        = "bid.placed"
	EventTypeAuctionEnded     = "auction.ended"
	EventTypeAuctionSold      = "auction.sold"
	EventTypeAuctionVerified  = "auction.verified"
	EventTypeAuctionRelisted  = "auction.relisted"
	EventTypeAuctionSubmitted = "auction.submitted"
)

// ExchangeAuctionEvents is the topic exchange all domain events are published to
const ExchangeAuctionEvents = "auction.events"

// Envelope is the wire representation of a domain event. Data holds flat,
// event-specific attributes (strings, numbers, booleans).
type Envelope struct {
	EventID    uuid.UUID
	Type       string
	AuctionID  uuid.UUID
	OccurredAt time.Time
	Data       map[string]any
}

// NewEnvelope creates an envelope with a fresh event id
func NewEnvelope(eventType string, auctionID uuid.UUID, occurredAt time.Time, data map[string]any) *Envelope {
	return &Envelope{
		EventID:    uuid.New(),
		Type:       eventType,
		AuctionID:  auctionID,
		OccurredAt: occurredAt,
		Data:       data,
	}
}

// Marshal encodes the envelope as a protobuf Struct
func (e *Envelope) Marshal() ([]byte, error) {
	data := e.Data
	if data == nil {
		data = map[string]any{}
	}
	msg, err := structpb.NewStruct(map[string]any{
		"event_id":    e.EventID.String(),
		"type":        e.Type,
		"auction_id":  e.AuctionID.String(),
		"occurred_at": e.OccurredAt.UTC().Format(time.RFC3339Nano),
		"data":        data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build event struct: %w", err)
	}
	return proto.Marshal(msg)
}

// UnmarshalEnvelope decodes a payload produced by Envelope.Marshal
func UnmarshalEnvelope(payload []byte) (*Envelope, error) {
	var msg structpb.Struct
	if err := proto.Unmarshal(payload, &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	fields := msg.AsMap()

	eventID, err := uuid.Parse(stringField(fields, "event_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid event_id: %w", err)
	}
	auctionID, err := uuid.Parse(stringField(fields, "auction_id"))
	if err != nil {
		return nil, fmt.Errorf("invalid auction_id: %w", err)
	}
	occurredAt, err := time.Parse(time.RFC3339Nano, stringField(fields, "occurred_at"))
	if err != nil {
		return nil, fmt.Errorf("invalid occurred_at: %w", err)
	}
	data, _ := fields["data"].(map[string]any)

	return &Envelope{
		EventID:    eventID,
		Type:       stringField(fields, "type"),
		AuctionID:  auctionID,
		OccurredAt: occurredAt,
		Data:       data,
	}, nil
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}
