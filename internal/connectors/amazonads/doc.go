// Package amazonads extracts advertising data from the Amazon Ads API.
//
// This package provides:
//   - OAuth2 token refresh against the Login with Amazon identity endpoint
//   - An authenticated HTTP client with retry, backoff, and rate limiting
//   - Offset-based pagination for list endpoints
//   - An asynchronous report job client (create, poll, download, decode)
//   - A stream catalog covering entity lists and performance reports
//
// # Access patterns
//
// Entity streams (campaigns, ad groups, targets, ads) are synchronous
// paginated list endpoints. Performance streams go through the asynchronous
// reporting pipeline: a report job is created, polled until it reaches a
// terminal state, and its artifact downloaded and decompressed.
//
// # Authentication
//
// Amazon Ads uses the refresh-token grant only; there is no interactive
// flow here. Every request carries a bearer token plus the
// Amazon-Advertising-API-ClientId and Amazon-Advertising-API-Scope headers.
// Access tokens last one hour; a safety margin is subtracted from the
// reported lifetime so a token never expires mid-request.
//
// # Rate limits
//
// The Amazon Ads API throttles aggressively and returns 429 with an
// optional Retry-After header. This package rate limits conservatively and
// backs off exponentially on throttled or failed requests.
package amazonads
