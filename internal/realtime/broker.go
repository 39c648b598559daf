package realtime

import (
	"sync"

	"vibechat-service/internal/models"
)

// Handler receives inserted message rows.
type Handler func(models.MessageRow)

// Broker fans change-feed inserts out to session subscribers. Delivery is
// synchronous on the publishing goroutine, in subscription order, so handlers
// must not block.
type Broker struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]Handler
	order  []uint64
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[uint64]Handler)}
}

// Subscribe registers h and returns a function that removes it. The returned
// function is safe to call more than once.
func (b *Broker) Subscribe(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[id] = h
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Broker) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Publish delivers row to every current subscriber.
func (b *Broker) Publish(row models.MessageRow) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.subs[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(row)
	}
}

// Subscribers reports the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
