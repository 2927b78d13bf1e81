// Package services orchestrates domain operations across storage, the
// message broker and the report cache.
package services

import (
	"context"
	"log/slog"

	"tally/internal/amqp"
)

// Flusher is the report cache's invalidation hook.
type Flusher interface {
	Flush() int
}

// Notifier fans out entity changes: it flushes the report cache and
// publishes an AMQP event. Neither step may fail a request; the ledger
// write already succeeded.
type Notifier struct {
	amqpClient *amqp.Client
	cache      Flusher
}

func NewNotifier(amqpClient *amqp.Client, cache Flusher) *Notifier {
	return &Notifier{amqpClient: amqpClient, cache: cache}
}

// EntityChanged records that entity id went through action. Related ids
// let consumers scope their work without a database round trip.
func (n *Notifier) EntityChanged(ctx context.Context, msg *amqp.EntityChangeMessage) {
	if n == nil {
		return
	}
	if n.cache != nil {
		n.cache.Flush()
	}
	if err := n.amqpClient.PublishEntityChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entity change",
			"entity", msg.Entity,
			"id", msg.ID,
			"action", msg.Action,
			"error", err)
	}
}
