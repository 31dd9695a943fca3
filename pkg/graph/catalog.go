package graph

import (
	"sort"
	"sync"
)

// Catalog is a named registry of graph stores. Callers own the catalog and
// pass it explicitly; there is no process-wide instance.
type Catalog struct {
	mu     sync.RWMutex
	graphs map[string]*GraphStore
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{graphs: make(map[string]*GraphStore)}
}

// Set registers a store under name, failing if the name is taken.
func (c *Catalog) Set(name string, store *GraphStore) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.graphs[name]; ok {
		return NewError("set").Graph(name).Cause(ErrGraphExists).Err()
	}
	c.graphs[name] = store
	return nil
}

// Get returns the store registered under name.
func (c *Catalog) Get(name string) (*GraphStore, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	store, ok := c.graphs[name]
	if !ok {
		return nil, GraphNotFoundError(name)
	}
	return store, nil
}

// Drop removes and returns the store registered under name.
func (c *Catalog) Drop(name string) (*GraphStore, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	store, ok := c.graphs[name]
	if !ok {
		return nil, GraphNotFoundError(name)
	}
	delete(c.graphs, name)
	return store, nil
}

// Names lists registered graph names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.graphs))
	for name := range c.graphs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
