// Package catalog holds the immutable lookup tables for energy categories:
// the page key a client submits, the human readable category label stored
// on entries, and the emission factor used by the carbon engine.
package catalog

import (
	"sort"
	"sync"
)

// DefaultFactor is applied when a page key has no emission factor.
const DefaultFactor = 1.0

// Category describes one reportable energy source.
type Category struct {
	PageKey string  `json:"page_key"`
	Label   string  `json:"category"`
	Factor  float64 `json:"emission_factor"`
}

// Catalog is a read-only set of categories. It is safe for concurrent use
// because nothing mutates it after construction.
type Catalog struct {
	byKey map[string]Category
	keys  []string
}

// New builds a catalog from the given categories. Later duplicates win.
func New(categories []Category) *Catalog {
	c := &Catalog{byKey: make(map[string]Category, len(categories))}
	for _, cat := range categories {
		c.byKey[cat.PageKey] = cat
	}
	c.keys = make([]string, 0, len(c.byKey))
	for k := range c.byKey {
		c.keys = append(c.keys, k)
	}
	sort.Strings(c.keys)
	return c
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog, constructed once per process.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = New(builtin)
	})
	return defaultCatalog
}

// Category resolves a page key to its category.
func (c *Catalog) Category(pageKey string) (Category, bool) {
	cat, ok := c.byKey[pageKey]
	return cat, ok
}

// Label returns the category label for a page key.
func (c *Catalog) Label(pageKey string) (string, bool) {
	cat, ok := c.byKey[pageKey]
	if !ok {
		return "", false
	}
	return cat.Label, true
}

// Factor returns the emission factor for a page key. The boolean is false
// when the key is unknown and DefaultFactor was returned instead.
func (c *Catalog) Factor(pageKey string) (float64, bool) {
	cat, ok := c.byKey[pageKey]
	if !ok {
		return DefaultFactor, false
	}
	return cat.Factor, true
}

// Has reports whether the page key is known.
func (c *Catalog) Has(pageKey string) bool {
	_, ok := c.byKey[pageKey]
	return ok
}

// PageKeys returns all known page keys in sorted order.
func (c *Catalog) PageKeys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// All returns every category sorted by page key.
func (c *Catalog) All() []Category {
	out := make([]Category, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.byKey[k])
	}
	return out
}
