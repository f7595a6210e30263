package publisher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/yogesh1636/Bibliotheca/internal/order/domain"
	r "github.com/yogesh1636/Bibliotheca/internal/order/repository"
)

type MockRepository struct {
	m            sync.Mutex
	OutboxEvents []*r.OutboxEvent
	ProcessedIds []int64
}

func (m *MockRepository) CreateOrder(context.Context, *domain.Order) error { return nil }

func (m *MockRepository) GetOrderByID(context.Context, uuid.UUID) (*domain.Order, error) {
	return nil, r.ErrOrderNotFound
}

func (m *MockRepository) ListOrdersByUserID(context.Context, string) ([]*domain.Order, error) {
	return nil, nil
}

func (m *MockRepository) GetUnprocessedEvents(context.Context, int) ([]*r.OutboxEvent, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []*r.OutboxEvent
	for _, e := range m.OutboxEvents {
		processed := false
		for _, id := range m.ProcessedIds {
			if id == e.ID {
				processed = true
				break
			}
		}
		if !processed {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockRepository) MarkEventAsProcessed(_ context.Context, id int64) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.ProcessedIds = append(m.ProcessedIds, id)
	return nil
}

func (m *MockRepository) RunMigrations(*r.Credentials) error { return nil }
func (m *MockRepository) Close() error                       { return nil }

func (m *MockRepository) processedCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return len(m.ProcessedIds)
}

func setupKafka(t *testing.T) (string, func()) {
	ctx := context.Background()

	kafkaContainer, err := kafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err)

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers, "broker address should not be empty")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate kafka container: %v", err)
		}
	}

	return brokers[0], cleanup
}

func TestOutboxPoller_PublishesAndMarksEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker, cleanupKafka := setupKafka(t)
	defer cleanupKafka()

	repo := &MockRepository{
		OutboxEvents: []*r.OutboxEvent{
			{
				ID:          1,
				AggregateId: "ORD-1700000000000-1",
				EventType:   "order.placed",
				Payload:     []byte(`{"order_number":"ORD-1700000000000-1","user_id":"u1","total_amount":15}`),
			},
		},
	}

	poller := NewOutboxPoller(repo, broker)
	defer poller.Close()
	go poller.Run(ctx)

	require.Eventually(t, func() bool {
		return repo.processedCount() == 1
	}, 30*time.Second, 500*time.Millisecond, "event was not marked as processed")

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       "order-events",
		StartOffset: kafkaGo.FirstOffset,
		MaxBytes:    10e6,
	})
	defer reader.Close()

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err)

	assert.Equal(t, "ORD-1700000000000-1", string(msg.Key))
	assert.Contains(t, string(msg.Value), `"total_amount":15`)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "order.placed", string(msg.Headers[0].Value))
}
