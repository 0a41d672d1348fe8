package auth

import (
	"context"
	"errors"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"
)

type contextKey string

const (
	tokenHeader               = "Authorization"
	tokenPrefix               = "Bearer "
	UserClaimsKey  contextKey = "user_claims"
	UserIDKey      contextKey = "user_id"
	PermissionsKey contextKey = "permissions"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("missing required permission")
)

// NewAuthInterceptor creates a ConnectRPC interceptor for authentication.
// Procedures listed in public may be called without a token; when one is
// supplied anyway it is still validated.
func NewAuthInterceptor(signer *Signer, public ...string) connect.UnaryInterceptorFunc {
	publicProcedures := make(map[string]struct{}, len(public))
	for _, p := range public {
		publicProcedures[p] = struct{}{}
	}

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get(tokenHeader)
			if authHeader == "" {
				if _, ok := publicProcedures[req.Spec().Procedure]; ok {
					return next(ctx, req)
				}
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("missing authorization header"))
			}

			if !strings.HasPrefix(authHeader, tokenPrefix) {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("invalid authorization header format"))
			}

			token := strings.TrimPrefix(authHeader, tokenPrefix)
			claims, err := signer.ValidateToken(token)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("invalid or expired token"))
			}

			return next(WithClaims(ctx, claims), req)
		}
	}
}

// WithClaims injects the token claims into ctx.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, UserClaimsKey, claims)
	ctx = context.WithValue(ctx, UserIDKey, claims.Subject)
	ctx = context.WithValue(ctx, PermissionsKey, claims.Permissions)
	return ctx
}

// GetUserClaims retrieves the full claims from the context.
func GetUserClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(*Claims)
	return claims, ok
}

// GetUserID retrieves the user ID from the context.
func GetUserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok
}

// RequireUser returns the caller's id and claims, or ErrUnauthenticated.
func RequireUser(ctx context.Context) (uuid.UUID, *Claims, error) {
	claims, ok := GetUserClaims(ctx)
	if !ok {
		return uuid.Nil, nil, ErrUnauthenticated
	}
	id, err := claims.UserID()
	if err != nil {
		return uuid.Nil, nil, ErrUnauthenticated
	}
	return id, claims, nil
}

// RequirePermission fails with ErrForbidden unless the caller holds perm.
func RequirePermission(ctx context.Context, perm string) error {
	claims, ok := GetUserClaims(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if !claims.HasPermission(perm) {
		return ErrForbidden
	}
	return nil
}
