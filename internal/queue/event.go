// Package queue defines the domain events exchanged over the message broker,
// the publisher used by the services and the audit consumer.
package queue

import "time"

// QueueName is the durable queue all CRM events are routed to.
const QueueName = "crm.events"

// Event is published after a successful mutation of a CRM entity. RelatedIDs
// names the documents touched alongside the entity itself (the customer an
// interaction was linked to, the opportunities removed with a lead, ...).
type Event struct {
	Type       string    `json:"type"` // e.g. "lead.deleted"
	Entity     string    `json:"entity"`
	EntityID   string    `json:"entity_id"`
	ActorID    string    `json:"actor_id,omitempty"`
	RelatedIDs []string  `json:"related_ids,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
