// Package redisinv держит горячее зеркало остатков в Redis для быстрых
// проверок доступности без похода в основное хранилище. Источник истины —
// products; зеркало обновляется вслед за ним.
package redisinv

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const stockKeyPrefix = "stock:"

// ErrNotMirrored возвращается, когда остаток товара ещё не загружен в зеркало.
var ErrNotMirrored = errors.New("product stock is not mirrored")

// Списание выполняется одним скриптом: сравнение и DECRBY атомарны на
// стороне Redis.
var decrementStockScript = redis.NewScript(`
local key = KEYS[1]
local quantity = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return -1
end

current = tonumber(current)
if current >= quantity then
	redis.call('DECRBY', key, quantity)
	return 1
end

return 0
`)

// Mirror — зеркало остатков поверх Redis.
type Mirror struct {
	client *redis.Client
	logger *log.Entry
}

// NewMirror создаёт зеркало остатков.
func NewMirror(client *redis.Client, logger *log.Entry) *Mirror {
	if logger == nil {
		logger = log.WithField("component", "stock-mirror")
	}
	return &Mirror{client: client, logger: logger}
}

// Ping проверяет доступность Redis.
func (m *Mirror) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

// SetStock записывает остаток товара в зеркало.
func (m *Mirror) SetStock(ctx context.Context, productID int64, quantity int) error {
	if err := m.client.Set(ctx, stockKey(productID), quantity, 0).Err(); err != nil {
		return fmt.Errorf("set mirrored stock for product %d: %w", productID, err)
	}
	return nil
}

// Stock возвращает остаток товара из зеркала или ErrNotMirrored.
func (m *Mirror) Stock(ctx context.Context, productID int64) (int, error) {
	raw, err := m.client.Get(ctx, stockKey(productID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotMirrored
	}
	if err != nil {
		return 0, fmt.Errorf("get mirrored stock for product %d: %w", productID, err)
	}
	quantity, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse mirrored stock for product %d: %w", productID, err)
	}
	return quantity, nil
}

// DecrementStock условно списывает остаток из зеркала. false без ошибки —
// остатка не хватило; незагруженный товар — ErrNotMirrored.
func (m *Mirror) DecrementStock(ctx context.Context, productID int64, quantity int) (bool, error) {
	result, err := decrementStockScript.Run(ctx, m.client, []string{stockKey(productID)}, quantity).Int()
	if err != nil {
		return false, fmt.Errorf("decrement mirrored stock for product %d: %w", productID, err)
	}
	if result == -1 {
		return false, ErrNotMirrored
	}
	return result == 1, nil
}

// IncrementStock возвращает остаток в зеркало.
func (m *Mirror) IncrementStock(ctx context.Context, productID int64, quantity int) error {
	if err := m.client.IncrBy(ctx, stockKey(productID), int64(quantity)).Err(); err != nil {
		return fmt.Errorf("increment mirrored stock for product %d: %w", productID, err)
	}
	return nil
}

func stockKey(productID int64) string {
	return stockKeyPrefix + strconv.FormatInt(productID, 10)
}
