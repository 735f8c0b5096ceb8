package middleware

import (
	"net/http"
	"strings"

	"github.com/nnamdi/kobolet/internal/domain"
	"github.com/nnamdi/kobolet/internal/infrastructure/auth"
	"github.com/nnamdi/kobolet/internal/usecase"
)

// APIKeyHeader is the header carrying programmatic access keys.
const APIKeyHeader = "X-API-Key"

// AuthMiddleware resolves the caller's identity from either a Bearer session
// token or an API key. Session tokens carry every capability; API keys carry
// the subset chosen when the key was minted.
func AuthMiddleware(jwtManager *auth.JWTManager, apiKeyUC *usecase.APIKeyUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey := r.Header.Get(APIKeyHeader); apiKey != "" {
				key, err := apiKeyUC.Authenticate(r.Context(), apiKey)
				if err != nil {
					http.Error(w, "invalid api key", http.StatusUnauthorized)
					return
				}

				identity := domain.Identity{
					UserID:       key.UserID,
					Capabilities: key.Permissions,
				}
				next.ServeHTTP(w, r.WithContext(domain.ContextWithIdentity(r.Context(), identity)))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "missing credentials", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			identity := domain.Identity{
				UserID:       claims.UserID,
				Capabilities: domain.AllCapabilities(),
			}
			next.ServeHTTP(w, r.WithContext(domain.ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// RequireCapability rejects identities that do not hold the capability. It
// must run after AuthMiddleware.
func RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := domain.IdentityFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if !identity.Can(capability) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
