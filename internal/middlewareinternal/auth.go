package middlewareinternal

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Evgen-Mutagen/qr-wallet/internal/core"
	"github.com/Evgen-Mutagen/qr-wallet/internal/types"
	"github.com/Evgen-Mutagen/qr-wallet/internal/util/logger"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

var (
	errMissingToken   = errors.New("missing bearer token")
	errMalformedToken = errors.New("malformed authorization header")
	errUnknownScheme  = errors.New("unsupported authorization scheme")
)

// JWTAuthMiddleware answers 401 when no token is sent and 403 when the
// token does not verify or comes under a scheme other than Bearer.
func JWTAuthMiddleware(authService core.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := extractToken(r)
			if err != nil {
				logger.Log.Debug("Failed to extract token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				if errors.Is(err, errUnknownScheme) {
					deny(w, r, http.StatusForbidden, "Forbidden")
					return
				}
				deny(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}

			username, err := authService.ValidateToken(tokenString)
			if err != nil {
				logger.Log.Warn("Invalid token",
					zap.String("path", r.URL.Path),
					zap.Error(err))
				deny(w, r, http.StatusForbidden, "Forbidden")
				return
			}

			ctx := context.WithValue(r.Context(), types.UsernameKey, username)
			logger.Log.Debug("User authenticated",
				zap.String("username", username),
				zap.String("path", r.URL.Path))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errMissingToken
	}

	parts := strings.Fields(authHeader)
	if len(parts) < 2 {
		return "", errMalformedToken
	}
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errUnknownScheme
	}

	return parts[1], nil
}

func deny(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"error": message})
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(types.UsernameKey).(string)
	return username, ok && username != ""
}
