package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: CartItemAdded}))
	assert.NoError(t, p.Close())
}

func TestNATSPublisher_Subject(t *testing.T) {
	p := NewNATSPublisher(nil, DefaultSubjectPrefix)
	assert.Equal(t, "artesania.storefront.order.created", p.Subject(OrderCreated))
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewNATSPublisher(nil, DefaultSubjectPrefix)
	assert.ErrorIs(t, p.Publish(ctx, Event{Type: CartUpdated}), context.Canceled)
}

func TestNATSPublisher_Publish(t *testing.T) {
	url := os.Getenv("TEST_NATS_URL")
	if url == "" {
		t.Skip("TEST_NATS_URL not set")
	}

	p, err := ConnectNATS(url, DefaultSubjectPrefix, slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	sub, err := p.conn.SubscribeSync(p.Subject(OrderCreated))
	require.NoError(t, err)

	require.NoError(t, p.Publish(context.Background(), Event{
		Type: OrderCreated, SessionID: "s1", Data: map[string]any{"order_id": "9"},
	}))

	msg, err := sub.NextMsg(2 * time.Second)
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, "s1", got.SessionID)
	assert.False(t, got.At.IsZero())
}
