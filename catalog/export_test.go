package catalog

import (
	"context"

	"github.com/fwojciec/concierge"
)

// AddToolForTest publishes an extra tool backed by fn.
func AddToolForTest(c *Catalog, tool concierge.Tool, fn func(ctx context.Context, args concierge.Arguments) (any, error)) {
	c.index[tool.Name] = len(c.entries)
	c.entries = append(c.entries, entry{tool: tool, run: fn})
}
