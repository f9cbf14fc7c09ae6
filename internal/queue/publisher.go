package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// defaultDialTimeout bounds the TCP connect and AMQP handshake when the
// publish context carries no deadline.
const defaultDialTimeout = 5 * time.Second

// AMQPPublisher publishes events to the durable crm.events queue through
// the default exchange. A connection is dialled per publish, so a broker
// outage only costs the events emitted while it lasts.
type AMQPPublisher struct {
	URL string
}

func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url}
}

// Publish marshals ev and sends it as a persistent JSON message. Errors are
// logged and returned so the caller may ignore them.
func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
	conn, err := dial(ctx, p.URL)
	if err != nil {
		slog.Warn("rabbitmq: dial failed", "err", err)
		return errors.Wrap(err, "dial broker")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		slog.Warn("rabbitmq: channel open failed", "err", err)
		return errors.Wrap(err, "open channel")
	}
	defer func() { _ = ch.Close() }()

	if err := declare(ch); err != nil {
		slog.Warn("rabbitmq: queue declare failed", "err", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Type:         ev.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", QueueName, false, false, msg); err != nil {
		slog.Warn("rabbitmq: publish failed", "type", ev.Type, "err", err)
		return errors.Wrap(err, "publish event")
	}
	return nil
}

// dial connects to url with the connect and handshake bounded by ctx's
// deadline. amqp.Dial alone would wait up to 30s on a silent broker.
func dial(ctx context.Context, url string) (*amqp.Connection, error) {
	timeout := defaultDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	return amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// NopPublisher drops every event. It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// declare makes sure the queue exists. Durable so messages survive broker
// restarts.
func declare(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(QueueName, true, false, false, false, nil)
	return errors.Wrap(err, "declare queue")
}
