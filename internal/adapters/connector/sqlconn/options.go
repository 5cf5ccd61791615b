package sqlconn

import (
	"time"

	"github.com/holoboard/holoboard/pkg/logger"
)

// Option configures a Connector.
type Option func(*Connector)

// WithLogger sets the connector logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Connector) {
		c.log = log
	}
}

// WithQueryTimeout bounds each top-N query.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *Connector) {
		if d > 0 {
			c.queryTimeout = d
		}
	}
}
