package httpapi

import (
	"context"

	"github.com/ndanilenko/passvault/internal/server/auth"
)

type ctxKey int

const (
	principalKey ctxKey = iota
	accountIDKey
)

// withIdentity attaches the resolved principal and the internal account id
// to the request context. The internal id never leaves the server; handlers
// use it to scope storage access.
func withIdentity(ctx context.Context, principal *auth.Principal, accountID int64) context.Context {
	ctx = context.WithValue(ctx, principalKey, principal)
	return context.WithValue(ctx, accountIDKey, accountID)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*auth.Principal)
	return p, ok
}

func accountIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(accountIDKey).(int64)
	return id, ok
}
