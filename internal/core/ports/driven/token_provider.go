package driven

import "context"

// TokenProvider supplies access tokens for authenticated API calls.
// Implementations handle token refresh transparently: a returned token is
// guaranteed valid for at least the implementation's safety margin.
type TokenProvider interface {
	// GetToken returns a valid access token, refreshing first if the current
	// token is absent or close to expiry.
	GetToken(ctx context.Context) (string, error)
}
