// Package connectors defines clients that pull solar profiles from remote
// providers.
package connectors

import (
	"context"

	"github.com/kilianp07/bessim/auth"
)

// ErrIncompatibleOption is the format of errors returned by options applied
// to the wrong client.
const ErrIncompatibleOption = "option %s is not supported by %s"

// ProfileClient fetches a solar power series in MW, one value per step.
type ProfileClient interface {
	Fetch(ctx context.Context, authClient *auth.ClientCred, opts ...Option) ([]float64, error)
}

// Option configures a single Fetch call.
type Option func(ProfileClient) error
