package triggers

import (
	"context"
	"path"
	"sync"
)

// Handler reacts to a single mutation. Handlers must be idempotent: delivery
// may be duplicated or reordered.
type Handler func(ctx context.Context, m Mutation) error

type subscription struct {
	name    string
	kind    Kind
	pattern string
	handler Handler
}

// Registry maps (kind, key pattern) pairs to handlers.
type Registry struct {
	mu   sync.RWMutex
	subs []subscription
}

func NewRegistry() *Registry {
	return &Registry{}
}

// On registers h for mutations of kind whose key matches pattern (path.Match
// syntax, e.g. "teams/*/shards/*").
func (r *Registry) On(kind Kind, pattern, name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, subscription{name: name, kind: kind, pattern: pattern, handler: h})
}

func (r *Registry) match(m Mutation) []subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []subscription
	for _, s := range r.subs {
		if s.kind != m.Kind {
			continue
		}
		if ok, err := path.Match(s.pattern, m.Key); err != nil || !ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Names lists the registered handler names, in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.subs))
	for i, s := range r.subs {
		names[i] = s.name
	}
	return names
}
