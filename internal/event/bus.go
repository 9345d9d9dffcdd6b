// Package event provides the in-process event bus plugins use to announce
// state changes to each other and to streaming clients.
package event

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/HerbHall/sentinel/internal/plugin"
)

var _ plugin.EventBus = (*Bus)(nil)

type subscription struct {
	id      uint64
	handler plugin.EventHandler
}

// Bus is a topic-keyed publish/subscribe dispatcher. Handlers run on the
// publishing goroutine for Publish and on their own goroutine for
// PublishAsync. A panicking handler is logged and does not affect others.
type Bus struct {
	mu     sync.RWMutex
	topics map[string][]subscription
	all    []subscription
	nextID uint64
	logger *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		topics: make(map[string][]subscription),
		logger: logger,
	}
}

// Subscribe registers h for events on topic. The returned func removes it.
func (b *Bus) Subscribe(topic string, h plugin.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription{id: id, handler: h})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.topics[topic] = remove(b.topics[topic], id)
		if len(b.topics[topic]) == 0 {
			delete(b.topics, topic)
		}
	}
}

// SubscribeAll registers h for every event. The returned func removes it.
func (b *Bus) SubscribeAll(h plugin.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscription{id: id, handler: h})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = remove(b.all, id)
	}
}

// Publish delivers e to every matching handler before returning.
func (b *Bus) Publish(ctx context.Context, e plugin.Event) error {
	for _, h := range b.handlers(e.Topic) {
		b.invoke(ctx, h, e)
	}
	return nil
}

// PublishAsync delivers e to every matching handler in the background.
func (b *Bus) PublishAsync(ctx context.Context, e plugin.Event) {
	for _, h := range b.handlers(e.Topic) {
		go b.invoke(ctx, h, e)
	}
}

func (b *Bus) handlers(topic string) []plugin.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	subs := b.topics[topic]
	out := make([]plugin.EventHandler, 0, len(subs)+len(b.all))
	for _, s := range subs {
		out = append(out, s.handler)
	}
	for _, s := range b.all {
		out = append(out, s.handler)
	}
	return out
}

func (b *Bus) invoke(ctx context.Context, h plugin.EventHandler, e plugin.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", e.Topic),
				zap.Any("panic", r),
			)
		}
	}()
	h(ctx, e)
}

func remove(subs []subscription, id uint64) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}
