package middleware

import (
	"errors"
	"net/http"
	"strings"

	"ideaboard/pkg/auth"
	"ideaboard/pkg/common"
	apperrors "ideaboard/pkg/errors"

	"go.uber.org/zap"
)

// Authenticate returns a middleware that validates bearer tokens and
// places the resolved user into the request context. Requests are rate
// limited per client IP before validation and per user after it.
func Authenticate(
	validator *auth.JWTValidator,
	ipLimiter auth.RateLimiter,
	userLimiter auth.RateLimiter,
	logger *zap.Logger,
) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := getClientIP(r)

			allowed, err := ipLimiter.Allow(r.Context(), clientIP)
			if err != nil {
				logger.Error("rate limiter error", zap.Error(err))
				common.RespondError(w, http.StatusInternalServerError,
					string(apperrors.ErrorTypeInternal), "Internal server error")
				return
			}
			if !allowed {
				common.RespondError(w, http.StatusTooManyRequests,
					"RATE_LIMITED", "Rate limit exceeded")
				return
			}

			token := extractToken(r)
			if token == "" {
				respondUnauthorized(w, "Missing authentication token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("invalid token",
					zap.Error(err),
					zap.String("ip", clientIP),
					zap.String("path", r.URL.Path),
				)

				switch {
				case errors.Is(err, auth.ErrExpiredToken):
					respondUnauthorized(w, "Token has expired")
				case errors.Is(err, auth.ErrInvalidSignature):
					respondUnauthorized(w, "Invalid token signature")
				default:
					respondUnauthorized(w, "Invalid token")
				}
				return
			}

			allowed, err = userLimiter.Allow(r.Context(), claims.UserID)
			if err != nil {
				logger.Error("user rate limiter error", zap.Error(err))
				common.RespondError(w, http.StatusInternalServerError,
					string(apperrors.ErrorTypeInternal), "Internal server error")
				return
			}
			if !allowed {
				common.RespondError(w, http.StatusTooManyRequests,
					"RATE_LIMITED", "User rate limit exceeded")
				return
			}

			userCtx := &auth.UserContext{
				UserID:   claims.UserID,
				Username: claims.Username,
			}
			ctx := auth.SetUserInContext(r.Context(), userCtx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return authHeader
}

// getClientIP extracts the client IP address, preferring proxy headers
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		return addr[:idx]
	}
	return addr
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	common.RespondError(w, http.StatusUnauthorized,
		string(apperrors.ErrorTypeUnauthorized), message)
}
