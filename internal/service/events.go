package service

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/iliyamo/crm-service/internal/metrics"
	"github.com/iliyamo/crm-service/internal/queue"
)

// EventPublisher delivers domain events. Implementations live in
// internal/queue.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

// publishTimeout bounds a single publish, broker dial included.
const publishTimeout = 3 * time.Second

type actorKey struct{}

// WithActor records the id of the authenticated caller on ctx.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFrom returns the caller id stored by WithActor, or "".
func ActorFrom(ctx context.Context) string {
	s, _ := ctx.Value(actorKey{}).(string)
	return s
}

// notifier counts and publishes successful mutations. Publishing is best
// effort: a broker failure is logged and never fails the operation.
type notifier struct {
	pub EventPublisher
}

func (n notifier) emit(ctx context.Context, entity, op string, id bson.ObjectID, related ...bson.ObjectID) {
	metrics.RecordEntityOperation(entity, op)
	if n.pub == nil {
		return
	}
	ev := queue.Event{
		Type:       entity + "." + op,
		Entity:     entity,
		EntityID:   id.Hex(),
		ActorID:    ActorFrom(ctx),
		OccurredAt: time.Now().UTC(),
	}
	for _, r := range related {
		ev.RelatedIDs = append(ev.RelatedIDs, r.Hex())
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := n.pub.Publish(pctx, ev); err != nil {
		slog.Warn("event publish failed", "type", ev.Type, "entity_id", ev.EntityID, "err", err)
	}
}
