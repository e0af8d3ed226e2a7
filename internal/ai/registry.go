package ai

import (
	"context"

	types "github.com/yungbote/skilltree-backend/internal/domain"
)

// Registry holds the providers compiled into this binary, keyed by agent type.
type Registry struct {
	providers map[types.AgentType]Provider
	order     []types.AgentType
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: map[types.AgentType]Provider{}}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register replaces any provider already registered for the same type.
func (r *Registry) Register(p Provider) {
	t := p.AgentType()
	if _, exists := r.providers[t]; !exists {
		r.order = append(r.order, t)
	}
	r.providers[t] = p
}

func (r *Registry) Get(t types.AgentType) (Provider, bool) {
	p, ok := r.providers[t]
	return p, ok
}

func (r *Registry) Types() []types.AgentType {
	out := make([]types.AgentType, len(r.order))
	copy(out, r.order)
	return out
}

// Resolve returns the provider for t if it is registered and available.
func (r *Registry) Resolve(ctx context.Context, t types.AgentType) (Provider, error) {
	p, ok := r.Get(t)
	if !ok {
		return nil, &ProviderError{AgentType: t, Err: ErrProviderNotFound}
	}
	if !p.IsAvailable(ctx) {
		return nil, &ProviderError{AgentType: t, Err: ErrProviderUnavailable}
	}
	return p, nil
}
