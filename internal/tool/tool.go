// Package tool exposes callable functions to an AI reasoning layer. The
// host runtime discovers tools through the registry and invokes them by
// name with JSON-shaped arguments.
package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Tool is a single function an agent can invoke.
type Tool interface {
	// Name is the unique identifier the model calls the tool by.
	Name() string

	// Description tells the model what the tool does.
	Description() string

	// Parameters is the JSON schema of the tool's arguments.
	Parameters() map[string]any

	// Execute runs the tool. Returned errors must carry messages safe to
	// surface to the end user.
	Execute(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Registry holds the tools available to the host. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("tool %q already registered", t.Name())
	}
	r.tools[t.Name()] = t
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	return t, ok
}

// List returns the registered tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
