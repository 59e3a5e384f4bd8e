// Package convctx carries the current session key through a context.Context
// so that tools needing to act on "the current conversation" (notably the
// session-clear builtin tool) can reach it without the tools package
// importing the agent package that owns the loop.
package convctx

import "context"

type sessionKeyType struct{}

// WithSessionKey returns a context carrying key as the current session key.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, sessionKeyType{}, key)
}

// SessionKey extracts the current session key, if any.
func SessionKey(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(sessionKeyType{}).(string)
	return key, ok
}
