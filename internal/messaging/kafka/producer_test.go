package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"
)

func TestProducer_PublishEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndSucceed()

	event := NewOrderCreatedEvent("order-123", "cust-1", 3000, []OrderEventItem{
		{ProductID: "p-1", Qty: 3, PriceMinor: 1000},
	})

	err := producer.PublishEvent(TopicOrderEvents, "order-123", event)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_PublishEvent_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)

	producer := &Producer{
		producer: mockProducer,
		logger:   log.WithField("component", "kafka-producer-test"),
	}

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	event := NewOrderCreatedEvent("order-123", "cust-1", 0, nil)

	err := producer.PublishEvent(TopicOrderEvents, "order-123", event)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewOrderCreatedEvent(t *testing.T) {
	items := []OrderEventItem{
		{ProductID: "p-1", Qty: 2, PriceMinor: 1000},
		{ProductID: "p-2", Qty: 1, PriceMinor: 500},
	}

	event := NewOrderCreatedEvent("order-123", "cust-1", 2500, items)

	if event.EventType != EventTypeOrderCreated {
		t.Errorf("expected event type %s, got %s", EventTypeOrderCreated, event.EventType)
	}

	if event.OrderID != "order-123" {
		t.Errorf("expected order id order-123, got %s", event.OrderID)
	}

	if event.CustomerID != "cust-1" {
		t.Errorf("expected customer id cust-1, got %s", event.CustomerID)
	}

	if event.AmountMinor != 2500 {
		t.Errorf("expected amount 2500, got %d", event.AmountMinor)
	}

	if len(event.Items) != 2 {
		t.Errorf("expected 2 items, got %d", len(event.Items))
	}

	if event.Timestamp.IsZero() {
		t.Error("timestamp should not be zero")
	}

	if time.Since(event.Timestamp) > time.Second {
		t.Error("timestamp should be close to current time")
	}
}
