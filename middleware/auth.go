package middleware

import (
	"net/http"
	"strings"

	"github.com/dcode-github/dealdirect/backend/controllers"
	"github.com/dcode-github/dealdirect/backend/logging"
	"github.com/dcode-github/dealdirect/backend/models"
	"github.com/dcode-github/dealdirect/backend/services"
)

// AgentPaths lists the path prefixes an agent token may reach.
var AgentPaths = []string{"/api/properties/add"}

func agentAllowed(path string, allowed []string) bool {
	for _, prefix := range allowed {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, error) {
	tokenHeader := r.Header.Get("Authorization")
	if tokenHeader == "" {
		logging.FromContext(r.Context()).Info("Missing Authorization header")
		return "", models.UnauthorizedError("missing Authorization header")
	}

	tokenParts := strings.Fields(tokenHeader)
	if len(tokenParts) != 2 || !strings.EqualFold(tokenParts[0], "Bearer") {
		logging.FromContext(r.Context()).Info("Invalid Authorization header format")
		return "", models.UnauthorizedError("invalid Authorization header format")
	}
	return tokenParts[1], nil
}

// AuthMiddleware resolves the bearer token to an account and rejects roles
// that may not reach the requested path. Admins pass everywhere, agents only
// under agentPaths.
func AuthMiddleware(auth *services.AuthService, agentPaths []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				controllers.WriteError(w, r, err)
				return
			}

			account, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				controllers.WriteError(w, r, err)
				return
			}

			switch account.Role {
			case models.RoleAdmin:
			case models.RoleAgent:
				if !agentAllowed(r.URL.Path, agentPaths) {
					controllers.WriteError(w, r, models.ForbiddenError("agents may only create listings"))
					return
				}
			default:
				controllers.WriteError(w, r, models.ForbiddenError("role %q is not permitted", account.Role))
				return
			}

			ctx := controllers.WithAccount(r.Context(), account)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).WithField("account_id", account.ID.Hex()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserAuthMiddleware admits client-site user tokens only.
func UserAuthMiddleware(users *services.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				controllers.WriteError(w, r, err)
				return
			}

			user, err := users.Authenticate(r.Context(), token)
			if err != nil {
				controllers.WriteError(w, r, err)
				return
			}

			ctx := controllers.WithUser(r.Context(), user)
			ctx = logging.WithLogger(ctx, logging.FromContext(ctx).WithField("user_id", user.ID.Hex()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
