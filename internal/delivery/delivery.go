// Package delivery defines the contract every transport front end implements.
package delivery

import "context"

// Delivery is a server that can be started by the application lifecycle.
type Delivery interface {
	// Serve blocks until the server stops or the context is canceled.
	Serve(ctx context.Context) error
}
