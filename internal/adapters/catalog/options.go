package catalog

import "github.com/rankdesk/rankdesk/pkg/logger"

// Option applies a configuration option to the Catalog.
type Option func(*Catalog)

// WithLogger sets a custom logger for the catalog.
func WithLogger(l logger.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}
