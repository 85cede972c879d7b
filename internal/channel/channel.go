package channel

import (
	"context"
)

// Sender is the uniform contract every platform adapter implements:
// deliver rendered text to a platform-specific address.
type Sender interface {
	// SendText delivers the message to the given platform address
	SendText(ctx context.Context, address, text string) error

	// Platform returns the platform key this adapter serves
	Platform() string
}

// Registry resolves a member's platform to its adapter. Adapters are
// registered once at startup and injected wherever sending happens.
type Registry struct {
	senders map[string]Sender
}

func NewRegistry(senders ...Sender) *Registry {
	r := &Registry{senders: make(map[string]Sender)}
	for _, s := range senders {
		r.senders[s.Platform()] = s
	}
	return r
}

// Resolve returns the adapter for a platform, or false when none is
// registered.
func (r *Registry) Resolve(platform string) (Sender, bool) {
	s, ok := r.senders[platform]
	return s, ok
}
