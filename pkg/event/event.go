// Package event is the in-process event bus: product writes, registrations
// and stock alerts are announced here and consumed by listeners registered
// at boot (profile auto-creation, the low-stock WebSocket feed, logging).
package event

import (
	"sync"
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

var (
	mu       sync.RWMutex
	handlers = map[string][]Handler{}
	inflight sync.WaitGroup
)

// Listen registers a handler for the given event name.
func Listen(event string, handler Handler) {
	mu.Lock()
	defer mu.Unlock()
	handlers[event] = append(handlers[event], handler)
}

// On registers a typed handler. Payloads of any other type are ignored, so a
// listener never has to repeat the type assertion itself.
func On[T any](event string, fn func(T)) {
	Listen(event, func(payload interface{}) {
		if v, ok := payload.(T); ok {
			fn(v)
		}
	})
}

func snapshot(event string) []Handler {
	mu.RLock()
	defer mu.RUnlock()
	hs := make([]Handler, len(handlers[event]))
	copy(hs, handlers[event])
	return hs
}

// Fire dispatches an event synchronously to all registered listeners, in
// registration order.
func Fire(event string, payload interface{}) {
	for _, h := range snapshot(event) {
		h(payload)
	}
}

// FireAsync dispatches the event to all listeners concurrently and returns
// immediately. In-flight handlers are tracked so Wait and Flush can drain
// them at shutdown.
func FireAsync(event string, payload interface{}) {
	for _, h := range snapshot(event) {
		inflight.Add(1)
		go func(h Handler) {
			defer inflight.Done()
			h(payload)
		}(h)
	}
}

// Wait blocks until every handler started by FireAsync has returned.
func Wait() {
	inflight.Wait()
}

// Flush waits for in-flight async handlers, then removes all listeners.
// Called at shutdown and between tests.
func Flush() {
	inflight.Wait()
	mu.Lock()
	defer mu.Unlock()
	handlers = map[string][]Handler{}
}
