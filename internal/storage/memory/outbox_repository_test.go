package memory

import (
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

func TestOutboxEnqueueAndPull(t *testing.T) {
	repo := NewOutboxRepository()

	msg, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "o-1",
		EventType:     "order.created",
		Payload:       []byte(`{"order_id":"o-1"}`),
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("expected enqueue to assign an id")
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("PullPending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending message, got %d", len(pending))
	}
	if pending[0].EventType != "order.created" {
		t.Fatalf("unexpected event type: %s", pending[0].EventType)
	}
}

func TestOutboxMarkSentRemovesFromPending(t *testing.T) {
	repo := NewOutboxRepository()

	msg, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "o-1", EventType: "order.created"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if err := repo.MarkSent(msg.ID); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("PullPending: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending messages, got %d", len(pending))
	}
}

func TestOutboxMarkFailed(t *testing.T) {
	repo := NewOutboxRepository()

	msg, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "o-1", EventType: "order.created"})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if err := repo.MarkFailed(msg.ID); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	pending, _ := repo.PullPending(10)
	if len(pending) != 0 {
		t.Fatalf("failed message must leave pending set, got %d", len(pending))
	}
}

func TestOutboxMarkUnknownID(t *testing.T) {
	repo := NewOutboxRepository()

	if err := repo.MarkSent("missing"); !errors.Is(err, domain.ErrOutboxPublish) {
		t.Fatalf("expected ErrOutboxPublish, got %v", err)
	}
}

func TestOutboxStats(t *testing.T) {
	repo := NewOutboxRepository()

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.PendingCount != 0 || !stats.OldestPendingAt.IsZero() {
		t.Fatalf("unexpected stats for empty outbox: %+v", stats)
	}

	first, _ := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "o-1", EventType: "order.created"})
	_, _ = repo.Enqueue(domain.OutboxMessage{AggregateType: "order", AggregateID: "o-2", EventType: "order.created"})

	stats, err = repo.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.PendingCount != 2 {
		t.Fatalf("pending = %d, want 2", stats.PendingCount)
	}
	if stats.OldestPendingAt.IsZero() {
		t.Fatal("expected oldest pending timestamp to be set")
	}

	if err := repo.MarkSent(first.ID); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	stats, _ = repo.Stats()
	if stats.PendingCount != 1 {
		t.Fatalf("pending = %d after MarkSent, want 1", stats.PendingCount)
	}
}

func TestOutboxPullPendingRespectsLimit(t *testing.T) {
	repo := NewOutboxRepository()

	for i := 0; i < 5; i++ {
		if _, err := repo.Enqueue(domain.OutboxMessage{AggregateType: "order", EventType: "order.created"}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	pending, err := repo.PullPending(3)
	if err != nil {
		t.Fatalf("PullPending: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 messages with limit 3, got %d", len(pending))
	}
}
