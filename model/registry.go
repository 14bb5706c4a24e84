package model

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/arloliu/impfit/errs"
)

// Registry maps class names and aliases to classes. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]Class
	aliases map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[string]Class),
		aliases: make(map[string]string),
	}
}

// Builtin returns a new registry holding SingleShell, DoubleShell and ColeCole.
func Builtin() *Registry {
	r := NewRegistry()
	for _, c := range []Class{SingleShell, DoubleShell, ColeCole} {
		if err := r.Register(c); err != nil {
			panic(fmt.Sprintf("model: invalid builtin class %s: %v", c.Name, err))
		}
	}

	return r
}

// Register adds c, replacing any class with the same (case-insensitive) name.
func (r *Registry) Register(c Class) error {
	if err := c.Validate(); err != nil {
		return err
	}

	key := strings.ToLower(c.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.classes[key]; ok && old.Alias != "" {
		delete(r.aliases, strings.ToLower(old.Alias))
	}
	r.classes[key] = c.Clone()
	if c.Alias != "" {
		r.aliases[strings.ToLower(c.Alias)] = key
	}

	return nil
}

// Lookup returns the class registered under name or alias, ignoring case.
func (r *Registry) Lookup(name string) (Class, bool) {
	key := strings.ToLower(strings.TrimSpace(name))

	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.classes[key]; ok {
		return c.Clone(), true
	}
	if target, ok := r.aliases[key]; ok {
		return r.classes[target].Clone(), true
	}

	return Class{}, false
}

// ParseClass is Lookup returning errs.ErrUnknownModelClass for unknown names.
func (r *Registry) ParseClass(name string) (Class, error) {
	c, ok := r.Lookup(name)
	if !ok {
		return Class{}, fmt.Errorf("%w: %q", errs.ErrUnknownModelClass, name)
	}

	return c, nil
}

// Names returns the registered class names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, c.Name)
	}
	slices.Sort(out)

	return out
}

// Classes returns every registered class, sorted by name.
func (r *Registry) Classes() []Class {
	names := r.Names()
	out := make([]Class, 0, len(names))
	for _, name := range names {
		c, _ := r.Lookup(name)
		out = append(out, c)
	}

	return out
}
