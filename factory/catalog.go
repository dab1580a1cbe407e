package factory

import (
	"fmt"

	"github.com/clydemeng/walletvm/core"
	"github.com/clydemeng/walletvm/core/types"
)

// catalog is the feature registry: an append-only, insertion-ordered set of
// feature names, each with an availability flag.
type catalog struct {
	names     []string
	available map[string]bool
}

func newCatalog(names []string) *catalog {
	c := &catalog{available: make(map[string]bool, len(names))}
	for _, name := range names {
		if _, ok := c.available[name]; ok || name == "" {
			continue
		}
		c.names = append(c.names, name)
		c.available[name] = true
	}
	return c
}

// has reports whether name has ever been registered.
func (c *catalog) has(name string) bool {
	_, ok := c.available[name]
	return ok
}

// check validates that name is registered and currently available.
func (c *catalog) check(name string) error {
	available, ok := c.available[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
	if !available {
		return fmt.Errorf("%w: %q", ErrFeatureDisabled, name)
	}
	return nil
}

// add registers name. It reports false if the name was already present.
func (c *catalog) add(fr *core.Frame, name string) bool {
	if c.has(name) {
		return false
	}
	c.names = append(c.names, name)
	c.available[name] = true
	fr.Journal(func() {
		c.names = c.names[:len(c.names)-1]
		delete(c.available, name)
	})
	return true
}

// setAvailable flips the availability flag of a registered feature.
func (c *catalog) setAvailable(fr *core.Frame, name string, available bool) error {
	prev, ok := c.available[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFeature, name)
	}
	c.available[name] = available
	fr.Journal(func() { c.available[name] = prev })
	return nil
}

// entries returns the catalog in registration order.
func (c *catalog) entries() []types.FeatureEntry {
	out := make([]types.FeatureEntry, len(c.names))
	for i, name := range c.names {
		out[i] = types.FeatureEntry{Name: name, Available: c.available[name]}
	}
	return out
}
