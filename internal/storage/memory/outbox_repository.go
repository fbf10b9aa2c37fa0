package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storeguard/internal/domain"
)

type outboxStatus string

const (
	outboxStatusPending outboxStatus = "pending"
	outboxStatusSent    outboxStatus = "sent"
	outboxStatusFailed  outboxStatus = "failed"
)

type outboxRecord struct {
	message   domain.OutboxMessage
	status    outboxStatus
	createdAt time.Time
}

// outboxRepositoryInMemory — in-memory реализация transactional outbox.
type outboxRepositoryInMemory struct {
	mu      sync.Mutex
	records []outboxRecord
}

// NewOutboxRepository возвращает in-memory outbox для локальной разработки и тестов.
func NewOutboxRepository() domain.OutboxRepository {
	return &outboxRepositoryInMemory{}
}

// Enqueue сохраняет событие для последующей публикации.
func (r *outboxRepositoryInMemory) Enqueue(_ context.Context, msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	r.records = append(r.records, outboxRecord{
		message:   msg,
		status:    outboxStatusPending,
		createdAt: time.Now().UTC(),
	})
	return msg, nil
}

// PullPending возвращает до limit неопубликованных событий в порядке добавления.
func (r *outboxRepositoryInMemory) PullPending(_ context.Context, limit int) ([]domain.OutboxMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pending []domain.OutboxMessage
	for _, record := range r.records {
		if record.status != outboxStatusPending {
			continue
		}
		pending = append(pending, record.message)
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending, nil
}

// Stats возвращает состояние backlog.
func (r *outboxRepositoryInMemory) Stats(_ context.Context) (domain.OutboxStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := domain.OutboxStats{}
	for _, record := range r.records {
		if record.status != outboxStatusPending {
			continue
		}
		stats.PendingCount++
		if stats.OldestPendingAt.IsZero() || record.createdAt.Before(stats.OldestPendingAt) {
			stats.OldestPendingAt = record.createdAt
		}
	}
	return stats, nil
}

// MarkSent помечает событие как опубликованное.
func (r *outboxRepositoryInMemory) MarkSent(_ context.Context, id string) error {
	return r.mark(id, outboxStatusSent)
}

// MarkFailed помечает событие как неопубликованное после исчерпания попыток.
func (r *outboxRepositoryInMemory) MarkFailed(_ context.Context, id string) error {
	return r.mark(id, outboxStatusFailed)
}

func (r *outboxRepositoryInMemory) mark(id string, status outboxStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, record := range r.records {
		if record.message.ID == id {
			r.records[i].status = status
			return nil
		}
	}
	return nil
}
