package utils

import (
	"context"

	"consultancy-cms/internal/data/entity"
)

type contextKey string

const (
	IdentityKey contextKey = "identity"
	TokenKey    contextKey = "token"
)

// SetIdentityContext attaches the authenticated admin identity to ctx.
func SetIdentityContext(ctx context.Context, identity entity.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

func GetIdentityFromContext(ctx context.Context) (entity.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(entity.Identity)
	if !ok || identity.Subject == "" {
		return entity.Identity{}, false
	}
	return identity, true
}

// GetTokenFromContext returns the raw session token presented with the request
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok && token != ""
}

func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenKey, token)
}
