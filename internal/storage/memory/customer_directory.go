package memory

import (
	"context"
	"sync"
)

// CustomerDirectory — in-memory справочник покупателей: только проверка
// существования, как и требует читающий порт.
type CustomerDirectory struct {
	mu  sync.RWMutex
	ids map[int64]struct{}
}

// NewCustomerDirectory создаёт справочник с начальным набором покупателей.
func NewCustomerDirectory(ids ...int64) *CustomerDirectory {
	dir := &CustomerDirectory{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		dir.ids[id] = struct{}{}
	}
	return dir
}

// Add регистрирует покупателя.
func (d *CustomerDirectory) Add(id int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids[id] = struct{}{}
}

// Exists проверяет наличие покупателя.
func (d *CustomerDirectory) Exists(_ context.Context, id int64) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.ids[id]
	return ok, nil
}
