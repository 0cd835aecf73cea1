// Package delivery defines the contract shared by every inbound transport.
package delivery

import "context"

// Delivery is a long-running inbound server started by the composition root.
type Delivery interface {
	// Serve blocks until the server stops.
	Serve(ctx context.Context) error
}
