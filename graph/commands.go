package graph

import (
	"errors"

	"github.com/plus3/nodeattr/attr"
)

// Commands buffers node removals so they can be requested while iterating
// over an attribute and applied once the iteration is done.
type Commands struct {
	removes []attr.Index
	defers  []func()
}

// NewCommands creates an empty command buffer.
func NewCommands() *Commands {
	return &Commands{}
}

// RemoveNode queues the removal of node i.
func (c *Commands) RemoveNode(i attr.Index) {
	c.removes = append(c.removes, i)
}

// Defer queues a function to run after all queued removals.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, fn)
}

// Len returns the number of queued operations.
func (c *Commands) Len() int {
	return len(c.removes) + len(c.defers)
}

// Flush applies the queued operations to g and resets the buffer.
// Removing a node twice, or a node that does not exist, is reported in the
// joined error; the remaining operations are still applied.
func (c *Commands) Flush(g *Graph) error {
	var errs []error
	for _, i := range c.removes {
		if err := g.RemoveNode(i); err != nil {
			errs = append(errs, err)
		}
	}

	for _, fn := range c.defers {
		fn()
	}

	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
	return errors.Join(errs...)
}
