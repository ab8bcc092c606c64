package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors the access tokens minted by the Travelogy backend. The
// engine only verifies them; it never issues tokens itself.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

type ctxKey int

const tokenKey ctxKey = iota

// ContextWithToken stashes the caller's raw bearer token so outbound
// backend requests can forward it.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// TokenFromContext returns the stashed bearer token, or "" when the
// context carries none.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}
