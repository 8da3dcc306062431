package tool

import (
	"fmt"

	"github.com/leofalp/searchgpt/providers/ai"
)

// Catalog is a fixed set of tools keyed by exact name. It is built once
// and never mutated, so it may be shared by concurrent queries.
type Catalog struct {
	order []GenericTool
	tools map[string]GenericTool
}

// NewCatalog registers tools in the given order. Empty or duplicate names are rejected.
func NewCatalog(tools ...GenericTool) (*Catalog, error) {
	c := &Catalog{tools: make(map[string]GenericTool, len(tools))}
	for _, t := range tools {
		name := t.ToolInfo().Name
		if name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if _, exists := c.tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool %q", name)
		}
		c.tools[name] = t
		c.order = append(c.order, t)
	}
	return c, nil
}

// Get retrieves a tool by its exact registered name.
func (c *Catalog) Get(name string) (GenericTool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

// Descriptions returns the tool schemas in registration order.
func (c *Catalog) Descriptions() []ai.ToolDescription {
	out := make([]ai.ToolDescription, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, t.ToolInfo())
	}
	return out
}

// Size returns the number of tools in the catalog.
func (c *Catalog) Size() int {
	return len(c.order)
}
