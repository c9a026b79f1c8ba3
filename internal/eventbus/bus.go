package eventbus

import (
	"context"
	"sync"
	"time"

	"zettel/internal/logger"
)

const (
	VaultChanged  = "vault.changed"
	WindowCreated = "window.created"
	WindowClosed  = "window.closed"
)

type Event struct {
	Type      string
	Timestamp time.Time
	Data      map[string]interface{}
}

type Handler interface {
	Handle(event Event)
	ID() string
}

// HandlerFunc adapts a function to Handler under a fixed id.
type HandlerFunc struct {
	Name string
	Fn   func(Event)
}

func (h HandlerFunc) Handle(event Event) { h.Fn(event) }
func (h HandlerFunc) ID() string          { return h.Name }

type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
	buffer      chan Event
	logger      logger.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewBus(bufferSize int, log logger.Logger) *Bus {
	ctx, cancel := context.WithCancel(context.Background())

	bus := &Bus{
		subscribers: make(map[string][]Handler),
		buffer:      make(chan Event, bufferSize),
		logger:      log,
		ctx:         ctx,
		cancel:      cancel,
	}

	bus.startWorker()
	return bus
}

// Publish never blocks; events are dropped when the buffer is full.
func (b *Bus) Publish(event Event) bool {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case <-b.ctx.Done():
		return false
	default:
	}

	select {
	case b.buffer <- event:
		return true
	default:
		b.logger.Warning("EventBus", "event dropped", map[string]interface{}{
			"type": event.Type,
		})
		return false
	}
}

func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

func (b *Bus) Unsubscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.subscribers[eventType]
	for i, h := range handlers {
		if h.ID() == handler.ID() {
			b.subscribers[eventType] = append(handlers[:i:i], handlers[i+1:]...)
			break
		}
	}
}

func (b *Bus) Shutdown() {
	b.cancel()
	b.wg.Wait()
}

func (b *Bus) startWorker() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		for {
			select {
			case event := <-b.buffer:
				b.dispatchEvent(event)
			case <-b.ctx.Done():
				return
			}
		}
	}()
}

func (b *Bus) dispatchEvent(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.subscribers[event.Type]))
	copy(handlers, b.subscribers[event.Type])
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.safeHandle(handler, event)
	}
}

func (b *Bus) safeHandle(h Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warning("EventBus", "handler panicked", map[string]interface{}{
				"handler": h.ID(),
				"type":    event.Type,
				"panic":   r,
			})
		}
	}()
	h.Handle(event)
}
