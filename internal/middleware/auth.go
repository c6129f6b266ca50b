package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/hisab/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// EmailKey is the context key for storing the authenticated user's email.
	EmailKey contextKey = "email"
	// MobileKey is the context key for storing the authenticated user's mobile number.
	MobileKey contextKey = "mobile"
)

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetEmail extracts the user email from the context.
// Returns empty string if not found.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

// GetMobile extracts the user's mobile number from the context.
func GetMobile(ctx context.Context) string {
	mobile, _ := ctx.Value(MobileKey).(string)
	return mobile
}

// WithClaims returns ctx carrying the identity in claims.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID())
	ctx = context.WithValue(ctx, EmailKey, claims.Email)
	ctx = context.WithValue(ctx, MobileKey, claims.Mobile)
	return ctx
}

// RequireAuth returns an interceptor that verifies the bearer token of every
// request and adds the caller's identity to the context.
func RequireAuth(verifier *auth.JWTVerifier) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			token, err := auth.BearerToken(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				slog.Warn("Rejected token", "procedure", req.Spec().Procedure, "error", err)
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			return next(WithClaims(ctx, claims), req)
		}
	}
}

// Authenticate verifies a plain HTTP request, for endpoints outside Connect
// such as the websocket upgrade. Browsers cannot set headers on a websocket
// handshake, so a "token" query parameter is accepted too.
func Authenticate(verifier *auth.JWTVerifier) func(r *http.Request) (string, error) {
	return func(r *http.Request) (string, error) {
		token := r.URL.Query().Get("token")
		if token == "" {
			var err error
			if token, err = auth.BearerToken(r.Header.Get("Authorization")); err != nil {
				return "", err
			}
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			return "", err
		}
		return claims.UserID(), nil
	}
}
