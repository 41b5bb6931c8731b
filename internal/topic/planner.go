package topic

import (
	"sync"

	"github.com/dshills/nstore/internal/namespace"
)

// Planner computes and memoizes notification plans per action name.
type Planner struct {
	resolver *namespace.Resolver

	mu    sync.RWMutex
	plans map[string][]string
}

// NewPlanner creates a planner that parses names with resolver.
func NewPlanner(resolver *namespace.Resolver) *Planner {
	if resolver == nil {
		resolver = namespace.NewResolver()
	}
	return &Planner{
		resolver: resolver,
		plans:    make(map[string][]string),
	}
}

// Plan returns the ordered channels to notify for a dispatch of name:
// the canonical name, each shorter namespace prefix, then the wildcard.
// The wildcard appears once even when name is the wildcard itself.
//
// The returned slice is shared with the cache and must not be modified.
func (p *Planner) Plan(name string) []string {
	p.mu.RLock()
	plan, ok := p.plans[name]
	p.mu.RUnlock()
	if ok {
		return plan
	}

	plan = p.build(name)

	p.mu.Lock()
	p.plans[name] = plan
	p.mu.Unlock()
	return plan
}

func (p *Planner) build(name string) []string {
	canonical := Topic(p.resolver.Resolve(name).Canonical())

	chain := Bubble(canonical)
	plan := make([]string, 0, len(chain)+1)
	for _, t := range chain {
		if t.IsWildcard() {
			continue
		}
		plan = append(plan, t.String())
	}
	return append(plan, Wildcard.String())
}

// Clear empties the plan cache.
func (p *Planner) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.plans = make(map[string][]string)
}

// Len returns the number of cached plans.
func (p *Planner) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.plans)
}
