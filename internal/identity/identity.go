// Package identity wraps the identity provider behind small interfaces so
// the REST middleware, the websocket handshake, and the aggregator share one
// client and tests can substitute fakes.
package identity

import "context"

// Principal is an authenticated or looked-up user as the provider knows it.
type Principal struct {
	UID         string
	DisplayName string
}

// Verifier validates a bearer credential and yields the principal's uid.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Directory resolves a uid to a principal. Lookup failures mean the user
// does not resolve; callers decide whether that is fatal or degradable.
type Directory interface {
	Lookup(ctx context.Context, uid string) (*Principal, error)
}
