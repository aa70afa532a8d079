package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/aniayu/storefront-go/internal/middleware"
)

const EventsExchange = "storefront.events"

type RabbitPublisher struct {
	ch       *amqp.Channel
	seq      Sequencer
	producer string
}

type PublisherOptions struct {
	Producer  string
	Sequencer Sequencer
}

func NewRabbitPublisher(conn *amqp.Connection, opts PublisherOptions) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	producer := opts.Producer
	if producer == "" {
		producer = "storefront"
	}
	seq := opts.Sequencer
	if seq == nil {
		seq = NewMemorySequencer()
	}

	return &RabbitPublisher{ch: ch, seq: seq, producer: producer}, nil
}

func (p *RabbitPublisher) Close() error {
	return p.ch.Close()
}

func (p *RabbitPublisher) Publish(ctx context.Context, ev Event) error {
	seq, err := p.seq.NextSequence(ctx, ev.PartitionKey)
	if err != nil {
		return fmt.Errorf("reserve sequence: %w", err)
	}

	env, err := newEnvelope(ev, middleware.GetCorrelationID(ctx), p.producer, seq, time.Now().UTC())
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", ev.Name, err)
	}

	return p.publishJSON(ctx, routingKey(ev.Name), body)
}

func (p *RabbitPublisher) publishJSON(ctx context.Context, key string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		key,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
