package operations

import (
	"context"
	"fmt"
	"sync"

	"symexport/internal/config"
	"symexport/internal/source"
)

// Step runs one kind of job against an open source session
type Step interface {
	Kind() config.JobKind
	Run(ctx context.Context, reader source.Reader, job config.Job) error
}

// Registry maps job kinds to their step
type Registry struct {
	mu    sync.RWMutex
	steps map[config.JobKind]Step
	order []config.JobKind
}

// NewRegistry creates an empty step registry
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[config.JobKind]Step),
	}
}

// Register adds a step for its kind
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil step")
	}

	kind := step.Kind()
	if kind == "" {
		return fmt.Errorf("step kind cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.steps[kind]; exists {
		return fmt.Errorf("step for kind %s already registered", kind)
	}

	r.steps[kind] = step
	r.order = append(r.order, kind)
	return nil
}

// Get retrieves the step of a kind
func (r *Registry) Get(kind config.JobKind) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, exists := r.steps[kind]
	if !exists {
		return nil, fmt.Errorf("no step registered for kind %s", kind)
	}
	return step, nil
}

// Has checks if a kind has a step
func (r *Registry) Has(kind config.JobKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.steps[kind]
	return exists
}

// Kinds returns the registered kinds in registration order
func (r *Registry) Kinds() []config.JobKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]config.JobKind, len(r.order))
	copy(kinds, r.order)
	return kinds
}
