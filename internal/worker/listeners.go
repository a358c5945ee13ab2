// Package worker starts the background consumers of domain events.
package worker

// Listener subscribes its handlers to the event dispatcher.
type Listener interface {
	RegisterHandlers()
}

// StartListeners registers every listener in order. Handlers run
// synchronously on publish, so registration order is execution order.
func StartListeners(listeners ...Listener) {
	for _, l := range listeners {
		l.RegisterHandlers()
	}
}
