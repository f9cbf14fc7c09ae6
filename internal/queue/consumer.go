package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
)

// StartAuditConsumer consumes crm.events and appends one line per event to
// the file at path. It reconnects with exponential backoff until ctx is
// cancelled. A message that cannot be handled is rejected without requeue
// so a bad payload cannot loop.
func StartAuditConsumer(ctx context.Context, url, path string) {
	backoff := time.Second
	for ctx.Err() == nil {
		conn, err := amqp.Dial(url)
		if err != nil {
			slog.Warn("audit-consumer: failed to dial broker", "err", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consume(ctx, conn, path)
		_ = conn.Close()
		if err == nil {
			return
		}
		slog.Warn("audit-consumer: consume loop ended, reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return
		}
	}
}

// consume returns nil only when ctx is done.
func consume(ctx context.Context, conn *amqp.Connection, path string) error {
	ch, err := conn.Channel()
	if err != nil {
		return errors.Wrap(err, "open channel")
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		slog.Warn("audit-consumer: set QoS failed", "err", err)
	}
	if err := declare(ch); err != nil {
		return err
	}
	msgs, err := ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return errors.Wrap(err, "consume queue")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := appendAudit(path, d.Body); err != nil {
				slog.Error("audit-consumer: handle message failed", "err", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func appendAudit(path string, body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return errors.Wrap(err, "unmarshal event")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create log dir")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	defer f.Close()

	if _, err := f.WriteString(formatAuditLine(ev)); err != nil {
		return errors.Wrap(err, "write log")
	}
	return nil
}

func formatAuditLine(ev Event) string {
	actor := ev.ActorID
	if actor == "" {
		actor = "-"
	}
	related := "[]"
	if len(ev.RelatedIDs) > 0 {
		related = "[" + strings.Join(ev.RelatedIDs, ",") + "]"
	}
	return fmt.Sprintf("[%s] %s | %s_id=%s | actor_id=%s | related=%s\n",
		ev.OccurredAt.UTC().Format(time.RFC3339), ev.Type, ev.Entity, ev.EntityID, actor, related)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
