// Package middleware provides HTTP middleware shared by all routes:
// request IDs, request-scoped logging, and Prometheus metrics.
package middleware

// contextKey is a private type for context values set by this package,
// preventing collisions with keys from other packages.
type contextKey string
