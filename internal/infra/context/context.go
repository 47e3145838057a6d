// Package context carries request-scoped values between transport middleware,
// services and logging.
package context

type contextKey string
