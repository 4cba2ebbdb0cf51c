package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shopking/auth/internal/auth/service"
)

// startBroker runs a throwaway RabbitMQ and returns its AMQP URL.
func startBroker(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("broker tests need docker")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5672/tcp"),
				wait.ForLog("Server startup complete"),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate broker: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5672/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

// bindQueue declares an exclusive queue bound to exchange/key and returns
// its deliveries.
func bindQueue(t *testing.T, url, exchange, key string) <-chan amqp.Delivery {
	t.Helper()

	conn, err := amqp.Dial(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	ch, err := conn.Channel()
	require.NoError(t, err)

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	require.NoError(t, err)
	require.NoError(t, ch.QueueBind(q.Name, key, exchange, false, nil))

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	require.NoError(t, err)
	return deliveries
}

func receive(t *testing.T, deliveries <-chan amqp.Delivery) amqp.Delivery {
	t.Helper()
	select {
	case d := <-deliveries:
		return d
	case <-time.After(5 * time.Second):
		t.Fatal("no message delivered")
		return amqp.Delivery{}
	}
}

func TestPublisher_DeliversPasswordReset(t *testing.T) {
	url := startBroker(t)

	p, err := NewPublisher(Options{URL: url, Mandatory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	require.NoError(t, p.Ping(context.Background()))

	deliveries := bindQueue(t, url, DefaultExchange, RoutingKeyPasswordReset)

	evt := service.PasswordResetEvent{
		UserID: "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV",
		Email:  "a@x.com",
		URL:    "http://localhost:3000/reset-password/abc",
	}
	require.NoError(t, p.NotifyPasswordReset(context.Background(), evt))

	d := receive(t, deliveries)
	require.Equal(t, "application/json", d.ContentType)
	require.Equal(t, RoutingKeyPasswordReset, d.RoutingKey)
	require.Equal(t, amqp.Persistent, d.DeliveryMode)

	var got service.PasswordResetEvent
	require.NoError(t, json.Unmarshal(d.Body, &got))
	require.Equal(t, evt, got)
}

func TestPublisher_UnroutableKey(t *testing.T) {
	url := startBroker(t)

	// Nothing is bound to this exchange, so the mandatory publish comes back.
	p, err := NewPublisher(Options{URL: url, Exchange: "shopking.unbound", Mandatory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	err = p.NotifyPasswordReset(context.Background(), service.PasswordResetEvent{UserID: "u1"})
	require.ErrorIs(t, err, ErrUnroutable)
}

func TestPublisher_ReconnectsAfterChannelClose(t *testing.T) {
	url := startBroker(t)

	p, err := NewPublisher(Options{URL: url, Mandatory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	deliveries := bindQueue(t, url, DefaultExchange, RoutingKeyPasswordReset)

	p.mu.Lock()
	require.NoError(t, p.ch.Close())
	p.mu.Unlock()

	require.NoError(t, p.NotifyPasswordReset(context.Background(), service.PasswordResetEvent{UserID: "u2"}))

	var got service.PasswordResetEvent
	require.NoError(t, json.Unmarshal(receive(t, deliveries).Body, &got))
	require.Equal(t, "u2", got.UserID)
	require.NoError(t, p.Ping(context.Background()))
}
