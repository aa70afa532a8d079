package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ev := Event{
		Name:         CartItemAdded,
		PartitionKey: "guest-1",
		Payload:      map[string]any{"productId": "p1", "quantity": 2},
	}

	env, err := newEnvelope(ev, "cid-1", "storefront", 4, now)
	require.NoError(t, err)
	require.NoError(t, env.Validate())

	assert.Equal(t, CartItemAdded, env.EventName)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "cid-1", env.CorrelationID)
	assert.Equal(t, int64(4), env.Sequence)
	assert.Equal(t, now, env.OccurredAt)
	assert.NotEmpty(t, env.EventID)
	assert.JSONEq(t, `{"productId":"p1","quantity":2}`, string(env.Payload))
	assert.Equal(t, "cart.item_added.v1", routingKey(env.EventName))
}

func TestEnvelopeValidate(t *testing.T) {
	env, err := newEnvelope(Event{Name: OrderPlaced}, "", "storefront", 1, time.Now())
	require.NoError(t, err)
	assert.EqualError(t, env.Validate(), "missing partitionKey")

	env.PartitionKey = "g"
	env.EventVersion = 2
	assert.EqualError(t, env.Validate(), "unexpected eventVersion 2")
}

func TestNewEnvelopeRejectsUnencodablePayload(t *testing.T) {
	_, err := newEnvelope(Event{Name: OrderPlaced, PartitionKey: "g", Payload: make(chan int)}, "", "p", 1, time.Now())
	assert.Error(t, err)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, Event) error { return errors.New("broker down") }

func TestEmitSwallowsErrors(t *testing.T) {
	var buf strings.Builder
	logger := log.New(&buf, "", 0)

	Emit(context.Background(), failingPublisher{}, logger, Event{Name: CartCleared})
	assert.Contains(t, buf.String(), "publish cart.cleared failed: broker down")

	Emit(context.Background(), nil, logger, Event{Name: CartCleared})
	Emit(context.Background(), Nop{}, log.New(io.Discard, "", 0), Event{Name: CartCleared})
}

func TestRecorder(t *testing.T) {
	var r Recorder
	_ = r.Publish(context.Background(), Event{Name: PaymentVerified})
	_ = r.Publish(context.Background(), Event{Name: PaymentFailed})
	assert.Equal(t, []string{PaymentVerified, PaymentFailed}, r.Names())
	assert.Len(t, r.Events(), 2)
}

func TestMemorySequencer(t *testing.T) {
	s := NewMemorySequencer()
	ctx := context.Background()

	a1, _ := s.NextSequence(ctx, "a")
	a2, _ := s.NextSequence(ctx, "a")
	b1, _ := s.NextSequence(ctx, "b")

	assert.Equal(t, int64(1), a1)
	assert.Equal(t, int64(2), a2)
	assert.Equal(t, int64(1), b1)
}

func TestPostgresSequencer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO event_sequence`).
		WithArgs("guest-1").
		WillReturnRows(pgxmock.NewRows([]string{"last_sequence"}).AddRow(int64(7)))

	seq, err := NewPostgresSequencer(mock).NextSequence(context.Background(), "guest-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSequencerError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO event_sequence`).
		WithArgs("guest-1").
		WillReturnError(errors.New("deadlock"))

	_, err = NewPostgresSequencer(mock).NextSequence(context.Background(), "guest-1")
	assert.EqualError(t, err, "next sequence: deadlock")
}

func TestEnvelopeJSONShape(t *testing.T) {
	env, err := newEnvelope(Event{Name: PaymentCancelled, PartitionKey: "g", Payload: map[string]string{"orderId": "o1"}}, "", "storefront", 0, time.Now())
	require.NoError(t, err)

	b, err := json.Marshal(env)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, m, "sequence")
	assert.NotContains(t, m, "correlationId")
	assert.Equal(t, "storefront", m["producer"])
}
