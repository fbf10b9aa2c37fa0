package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
	"github.com/vladislavdragonenkov/storeguard/internal/service/outbox"
	"github.com/vladislavdragonenkov/storeguard/internal/storage/memory"
)

// fakePublisher считает публикации и отказывает первые failFirst вызовов
// каждого сообщения.
type fakePublisher struct {
	mu        sync.Mutex
	failFirst int
	attempts  map[string]int
	published []domain.OutboxMessage
}

func newFakePublisher(failFirst int) *fakePublisher {
	return &fakePublisher{failFirst: failFirst, attempts: make(map[string]int)}
}

func (p *fakePublisher) Publish(_ context.Context, msg domain.OutboxMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.attempts[msg.ID]++
	if p.attempts[msg.ID] <= p.failFirst {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, msg)
	return nil
}

func (p *fakePublisher) publishedTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	types := make([]string, 0, len(p.published))
	for _, msg := range p.published {
		types = append(types, msg.EventType)
	}
	return types
}

func enqueue(t *testing.T, repo domain.OutboxRepository, eventType string) domain.OutboxMessage {
	t.Helper()
	msg, err := repo.Enqueue(context.Background(), domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "1",
		EventType:     eventType,
		Payload:       []byte(`{}`),
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	return msg
}

func pendingCount(t *testing.T, repo domain.OutboxRepository) int {
	t.Helper()
	stats, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	return stats.PendingCount
}

func TestWorker_PublishesAndMarksSent(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := newFakePublisher(0)
	enqueue(t, repo, "order.created")
	enqueue(t, repo, "order.status_changed")

	worker := outbox.NewWorker(repo, publisher, outbox.WithRetryBaseDelay(0))
	worker.ProcessOnce(context.Background())

	types := publisher.publishedTypes()
	if len(types) != 2 || types[0] != "order.created" || types[1] != "order.status_changed" {
		t.Fatalf("unexpected published events: %v", types)
	}
	if got := pendingCount(t, repo); got != 0 {
		t.Fatalf("expected empty backlog, got %d pending", got)
	}
}

func TestWorker_RetriesTransientErrors(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := newFakePublisher(2)
	msg := enqueue(t, repo, "order.created")

	worker := outbox.NewWorker(repo, publisher, outbox.WithMaxAttempts(3), outbox.WithRetryBaseDelay(0))
	worker.ProcessOnce(context.Background())

	if publisher.attempts[msg.ID] != 3 {
		t.Fatalf("expected 3 attempts, got %d", publisher.attempts[msg.ID])
	}
	if len(publisher.publishedTypes()) != 1 {
		t.Fatal("message must be published after retries")
	}
	if got := pendingCount(t, repo); got != 0 {
		t.Fatalf("expected empty backlog, got %d pending", got)
	}
}

func TestWorker_MarksFailedAfterExhaustedRetries(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := newFakePublisher(10)
	enqueue(t, repo, "order.created")
	survives := enqueue(t, repo, "order.status_changed")

	worker := outbox.NewWorker(repo, publisher, outbox.WithMaxAttempts(2), outbox.WithRetryBaseDelay(0))
	worker.ProcessOnce(context.Background())

	// Исчерпавшее попытки сообщение помечено failed и больше не в backlog.
	if got := pendingCount(t, repo); got != 0 {
		t.Fatalf("expected failed messages out of backlog, got %d pending", got)
	}
	pending, err := repo.PullPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	for _, msg := range pending {
		if msg.ID == survives.ID {
			t.Fatal("second message must also leave pending state")
		}
	}
}

func TestWorker_StopsOnCancelledContext(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := newFakePublisher(0)
	enqueue(t, repo, "order.created")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	worker := outbox.NewWorker(repo, publisher)
	worker.ProcessOnce(ctx)

	if len(publisher.publishedTypes()) != 0 {
		t.Fatal("cancelled context must stop processing")
	}
	if got := pendingCount(t, repo); got != 1 {
		t.Fatalf("message must stay pending, got %d", got)
	}
}

func TestWorker_BatchSizeLimitsPull(t *testing.T) {
	repo := memory.NewOutboxRepository()
	publisher := newFakePublisher(0)
	for i := 0; i < 5; i++ {
		enqueue(t, repo, "order.created")
	}

	worker := outbox.NewWorker(repo, publisher, outbox.WithBatchSize(2), outbox.WithRetryBaseDelay(0))
	worker.ProcessOnce(context.Background())

	if len(publisher.publishedTypes()) != 2 {
		t.Fatalf("expected batch of 2, got %d", len(publisher.publishedTypes()))
	}
	if got := pendingCount(t, repo); got != 3 {
		t.Fatalf("expected 3 left pending, got %d", got)
	}
}
