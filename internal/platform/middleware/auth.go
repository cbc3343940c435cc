package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	jwttoken "fleetgate/internal/jwt_token"
)

// JWTValidator defines the interface for validating session tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*jwttoken.Claims, error)
}

// Context keys for storing authenticated actor information
type contextKeyActorEmail struct{}
type contextKeySessionID struct{}

// ContextKeyActorEmail is exported for use in handlers
var (
	ContextKeyActorEmail = contextKeyActorEmail{}
	ContextKeySessionID  = contextKeySessionID{}
)

// GetActorEmail retrieves the authenticated actor email from the context
func GetActorEmail(ctx context.Context) string {
	email, ok := ctx.Value(ContextKeyActorEmail).(string)
	if !ok {
		return ""
	}
	return email
}

// GetSessionID retrieves the session ID from the context
func GetSessionID(ctx context.Context) string {
	sessionID, ok := ctx.Value(ContextKeySessionID).(string)
	if !ok {
		return ""
	}
	return sessionID
}

// OptionalAuth parses a bearer token when one is present and stores its
// claims in the context, but never rejects the request. Page routes use it so
// the route guard can decide between redirect and denial itself.
func OptionalAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if after, ok := strings.CutPrefix(authHeader, bearerPrefix); ok {
				claims, err := validator.ValidateToken(after)
				if err == nil {
					ctx := r.Context()
					ctx = context.WithValue(ctx, ContextKeyActorEmail, claims.ActorEmail)
					ctx = context.WithValue(ctx, ContextKeySessionID, claims.SessionID)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				logger.WarnContext(r.Context(), "ignoring invalid bearer token",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if after, ok := strings.CutPrefix(authHeader, bearerPrefix); ok {
				token := after
				claims, err := validator.ValidateToken(token)
				if err != nil {
					ctx := r.Context()
					requestID := GetRequestID(ctx)
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"error", err,
						"request_id", requestID,
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					_, err = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
					if err != nil {
						logger.ErrorContext(ctx, "failed to write unauthorized response",
							"error", err,
							"request_id", requestID,
						)
					}
					return
				}

				ctx := r.Context()
				ctx = context.WithValue(ctx, ContextKeyActorEmail, claims.ActorEmail)
				ctx = context.WithValue(ctx, ContextKeySessionID, claims.SessionID)

				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// No Authorization header or invalid format
			ctx := r.Context()
			requestID := GetRequestID(ctx)
			logger.WarnContext(ctx, "unauthorized access - missing token",
				"request_id", requestID,
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, err := w.Write([]byte(`{"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`))
			if err != nil {
				logger.ErrorContext(ctx, "failed to write unauthorized response",
					"error", err,
					"request_id", requestID,
				)
			}
		})
	}
}
