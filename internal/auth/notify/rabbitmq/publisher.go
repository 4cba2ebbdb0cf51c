// Package rabbitmq delivers password-reset events to a topic exchange so a
// mailer can send the link out of band.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shopking/auth/internal/auth/service"
	"github.com/shopking/auth/pkg/slogx"
)

const (
	DefaultExchange = "shopking.events"

	RoutingKeyPasswordReset = "auth.password.reset.requested"

	// DefaultTimeout bounds a publish when the caller's context has no
	// deadline of its own.
	DefaultTimeout = 2 * time.Second
)

var ErrUnroutable = errors.New("rabbitmq: message unroutable")

type Options struct {
	URL      string
	Exchange string
	Timeout  time.Duration

	// Mandatory asks the broker to return messages no queue is bound for.
	Mandatory bool
}

// Publisher implements service.ResetNotifier over a single confirm-mode
// channel, reconnecting after channel failures.
type Publisher struct {
	opts Options
	now  func() time.Time

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

var _ service.ResetNotifier = (*Publisher)(nil)

// NewPublisher dials the broker and declares the exchange.
func NewPublisher(opts Options) (*Publisher, error) {
	if opts.URL == "" {
		return nil, errors.New("rabbitmq: url is required")
	}
	if opts.Exchange == "" {
		opts.Exchange = DefaultExchange
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	p := &Publisher{opts: opts, now: time.Now}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetConn()
	return nil
}

// Ping reports whether the broker connection is open.
func (p *Publisher) Ping(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("rabbitmq: connection closed")
	}
	return nil
}

func (p *Publisher) NotifyPasswordReset(ctx context.Context, evt service.PasswordResetEvent) error {
	msg, err := newMessage(evt, p.now())
	if err != nil {
		return err
	}
	if err := p.publish(ctx, RoutingKeyPasswordReset, msg); err != nil {
		return err
	}
	slogx.FromContext(ctx).Debug("password reset event published",
		"exchange", p.opts.Exchange,
		"routing_key", RoutingKeyPasswordReset,
		"message_id", msg.MessageId,
	)
	return nil
}

// newMessage encodes evt as a persistent JSON message.
func newMessage(evt service.PasswordResetEvent, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal payload: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    now.UTC(),
		Type:         RoutingKeyPasswordReset,
		MessageId:    evt.UserID + "-" + fmt.Sprint(now.UnixNano()),
		Body:         body,
	}, nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.opts.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		p.opts.Exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}

	p.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) ensureConnected() error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	p.resetConn()
	return p.connect()
}

func (p *Publisher) publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureConnected(); err != nil {
		return err
	}

	// Drop confirms left over from an earlier publish that timed out.
drain:
	for {
		select {
		case <-p.confirmCh:
		case <-p.returnCh:
		default:
			break drain
		}
	}

	if err := p.ch.PublishWithContext(ctx, p.opts.Exchange, routingKey, p.opts.Mandatory, false, msg); err != nil {
		p.resetConn()
		return fmt.Errorf("publish: %w", err)
	}

	// With mandatory set the broker sends basic.return before the ack.
	select {
	case ret := <-p.returnCh:
		return fmt.Errorf("%w: key=%s code=%d text=%s", ErrUnroutable, routingKey, ret.ReplyCode, ret.ReplyText)

	case conf, ok := <-p.confirmCh:
		if !ok {
			p.resetConn()
			return errors.New("rabbitmq: channel closed before confirm")
		}
		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: key=%s delivery_tag=%d", routingKey, conf.DeliveryTag)
		}
		// A returned message is acked too. The return is dispatched first,
		// so it is already buffered when both are ready.
		select {
		case ret := <-p.returnCh:
			return fmt.Errorf("%w: key=%s code=%d text=%s", ErrUnroutable, routingKey, ret.ReplyCode, ret.ReplyText)
		default:
		}
		return nil

	case <-ctx.Done():
		return fmt.Errorf("rabbitmq publish: %w", ctx.Err())
	}
}

func (p *Publisher) resetConn() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
