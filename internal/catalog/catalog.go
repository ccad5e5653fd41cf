// Package catalog holds the overlay definitions a user can pick from: the built-ins
// shipped with the binary followed by filters registered at runtime.
package catalog

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/kozaktomas/face-filter/internal/logging"
)

// Catalog is an append-only list of filter definitions. It is safe for concurrent use.
type Catalog struct {
	builtins  []FilterDefinition
	custom    []FilterDefinition
	validate  *validator.Validate
	listeners map[int]func()
	nextID    int
	mu        sync.RWMutex
}

// New creates a catalog seeded with the given built-in filters.
func New(builtins []FilterDefinition) *Catalog {
	return &Catalog{
		builtins:  append([]FilterDefinition(nil), builtins...),
		validate:  validator.New(),
		listeners: make(map[int]func()),
	}
}

// RegisterFilter appends def to the custom filters. Definitions without an identifier
// or image, or with an unknown category, are dropped without error; the return value
// reports whether the catalog changed. An empty category defaults to eyes.
func (c *Catalog) RegisterFilter(def FilterDefinition) bool {
	def.Identifier = strings.TrimSpace(def.Identifier)
	def.ImageRef = strings.TrimSpace(def.ImageRef)
	if def.Category == "" {
		def.Category = CategoryEyes
	}
	if err := c.validate.Struct(def); err != nil {
		logging.Debug(logging.Fields{"value": def.Identifier, "error": err.Error()}, "filter registration rejected")
		return false
	}

	c.mu.Lock()
	c.custom = append(c.custom, def)
	listeners := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	logging.Info(logging.Fields{"value": def.Identifier, "category": def.Category}, "filter registered")

	for _, fn := range listeners {
		fn()
	}
	return true
}

// AllFilters returns built-ins followed by custom filters in insertion order.
func (c *Catalog) AllFilters() []FilterDefinition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	all := make([]FilterDefinition, 0, len(c.builtins)+len(c.custom))
	all = append(all, c.builtins...)
	all = append(all, c.custom...)
	return all
}

// Len returns the number of filters in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.builtins) + len(c.custom)
}

// Subscribe registers fn to run after every successful registration.
// fn runs on the registering goroutine. The returned func removes the subscription.
func (c *Catalog) Subscribe(fn func()) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}
