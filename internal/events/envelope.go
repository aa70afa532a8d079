package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventEnvelope is the shared envelope for v1 storefront events.
type EventEnvelope struct {
	EventName     string          `json:"eventName"`
	EventVersion  int             `json:"eventVersion"`
	EventID       string          `json:"eventId"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Producer      string          `json:"producer"`
	PartitionKey  string          `json:"partitionKey"`
	Sequence      int64           `json:"sequence,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Payload       json.RawMessage `json:"payload"`
}

func (e EventEnvelope) Validate() error {
	if e.EventName == "" {
		return fmt.Errorf("missing eventName")
	}
	if e.EventVersion != 1 {
		return fmt.Errorf("unexpected eventVersion %d", e.EventVersion)
	}
	if e.PartitionKey == "" {
		return fmt.Errorf("missing partitionKey")
	}
	if e.EventID == "" {
		return fmt.Errorf("missing eventId")
	}
	return nil
}

func newEnvelope(ev Event, correlationID, producer string, seq int64, occurredAt time.Time) (EventEnvelope, error) {
	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("marshal %s payload: %w", ev.Name, err)
	}
	return EventEnvelope{
		EventName:     ev.Name,
		EventVersion:  1,
		EventID:       uuid.NewString(),
		CorrelationID: correlationID,
		Producer:      producer,
		PartitionKey:  ev.PartitionKey,
		Sequence:      seq,
		OccurredAt:    occurredAt,
		Payload:       payload,
	}, nil
}

func routingKey(name string) string {
	return name + ".v1"
}
