package resilience

import (
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Breaker exposes the circuit breaker of a provider client.
type Breaker interface {
	CircuitBreakerState() gobreaker.State
	CircuitBreakerCounts() gobreaker.Counts
}

// Condition summarises a provider's breaker state.
type Condition int

const (
	ConditionHealthy Condition = iota
	// ConditionRecovering is the half-open probe period.
	ConditionRecovering
	// ConditionTripped means calls are being rejected.
	ConditionTripped
)

func (c Condition) String() string {
	switch c {
	case ConditionHealthy:
		return "healthy"
	case ConditionRecovering:
		return "recovering"
	case ConditionTripped:
		return "tripped"
	default:
		return "unknown"
	}
}

// ProviderHealth is a point-in-time view of one upstream provider.
type ProviderHealth struct {
	Name         string
	CircuitState gobreaker.State
	Counts       gobreaker.Counts

	// Successes and Failures count every call since registration. Unlike
	// Counts they are never reset by the breaker.
	Successes uint64
	Failures  uint64

	LastSuccessAt *time.Time
	LastFailureAt *time.Time
	LastError     string
}

// Condition maps the circuit state to a Condition.
func (h *ProviderHealth) Condition() Condition {
	switch h.CircuitState {
	case gobreaker.StateOpen:
		return ConditionTripped
	case gobreaker.StateHalfOpen:
		return ConditionRecovering
	default:
		return ConditionHealthy
	}
}

// Healthy reports whether the circuit is closed.
func (h *ProviderHealth) Healthy() bool {
	return h.Condition() == ConditionHealthy
}

// Registry tracks provider breakers and call outcomes for status reporting.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*providerEntry
}

type providerEntry struct {
	breaker       Breaker
	successes     uint64
	failures      uint64
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]*providerEntry)}
}

// Register adds or replaces a provider. Replacing resets its history.
func (r *Registry) Register(name string, b Breaker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = &providerEntry{breaker: b}
}

// RecordSuccess records a successful call. Unknown names are ignored.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[name]; ok {
		now := time.Now()
		p.successes++
		p.lastSuccessAt = &now
	}
}

// RecordFailure records a failed call. Unknown names are ignored.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.providers[name]; ok {
		now := time.Now()
		p.failures++
		p.lastFailureAt = &now
		if err != nil {
			p.lastError = err.Error()
		}
	}
}

// Health returns one provider's health, or nil if it is not registered.
func (r *Registry) Health(name string) *ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil
	}
	return p.snapshot(name)
}

// Snapshot returns every provider's health sorted by name.
func (r *Registry) Snapshot() []*ProviderHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*ProviderHealth, 0, len(r.providers))
	for name, p := range r.providers {
		out = append(out, p.snapshot(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Unhealthy returns the sorted names of providers whose circuit is not closed.
func (r *Registry) Unhealthy() []string {
	var names []string
	for _, h := range r.Snapshot() {
		if !h.Healthy() {
			names = append(names, h.Name)
		}
	}
	return names
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

func (p *providerEntry) snapshot(name string) *ProviderHealth {
	h := &ProviderHealth{
		Name:          name,
		Successes:     p.successes,
		Failures:      p.failures,
		LastSuccessAt: p.lastSuccessAt,
		LastFailureAt: p.lastFailureAt,
		LastError:     p.lastError,
	}
	if p.breaker != nil {
		h.CircuitState = p.breaker.CircuitBreakerState()
		h.Counts = p.breaker.CircuitBreakerCounts()
	}
	return h
}
