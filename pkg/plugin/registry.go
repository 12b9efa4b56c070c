package plugin

import (
	"fmt"
	"sort"
	"sync"

	"firestige.xyz/chatsniff/internal/core"
)

// ReporterFactory creates a fresh, uninitialized Reporter.
type ReporterFactory func() Reporter

type registry[F any] struct {
	mu        sync.RWMutex
	factories map[string]F
}

func newRegistry[F any]() *registry[F] {
	return &registry[F]{factories: make(map[string]F)}
}

func (r *registry[F]) register(name string, f F) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("plugin %q already registered", name))
	}
	r.factories[name] = f
}

func (r *registry[F]) get(name string) (F, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

func (r *registry[F]) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset removes every registration. Tests only.
func (r *registry[F]) Reset() {
	r.mu.Lock()
	r.factories = make(map[string]F)
	r.mu.Unlock()
}

var reporterReg = newRegistry[ReporterFactory]()

// RegisterReporter registers a reporter factory. Panics on duplicate names.
func RegisterReporter(name string, f ReporterFactory) {
	reporterReg.register(name, f)
}

// GetReporterFactory looks up a reporter factory by name.
func GetReporterFactory(name string) (ReporterFactory, error) {
	f, ok := reporterReg.get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrReporterNotFound, name)
	}
	return f, nil
}

// ReporterNames lists registered reporters in sorted order.
func ReporterNames() []string {
	return reporterReg.names()
}
