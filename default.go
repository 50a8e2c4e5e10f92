package stormbus

import (
	"context"
	"reflect"
)

// defaultBus is the process-wide bus behind the package-level functions.
var defaultBus = New()

// Default returns the process-wide bus.
func Default() *Bus {
	return defaultBus
}

// Subscribe registers a listener on the default bus.
func Subscribe(ctx context.Context, eventType reflect.Type, l Listener, opts ...SubscribeOption) (*Handle, error) {
	return defaultBus.Subscribe(ctx, eventType, l, opts...)
}

// SubscribeFunc registers a function listener on the default bus.
func SubscribeFunc(ctx context.Context, eventType reflect.Type, fn ListenerFunc, opts ...SubscribeOption) (*Handle, error) {
	return defaultBus.SubscribeFunc(ctx, eventType, fn, opts...)
}

// Broadcast delivers ev on the default bus.
func Broadcast(ev Event) {
	defaultBus.Broadcast(ev)
}

// Disable suspends all delivery on the default bus without affecting
// registrations.
func Disable() {
	defaultBus.Disable()
}

// Enable resumes delivery on the default bus.
func Enable() {
	defaultBus.Enable()
}
