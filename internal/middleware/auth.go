package middleware

import (
	"context"
	"errors"
	"net/http"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"go.uber.org/zap"

	"github.com/segyhp/sacco-engine/internal/auth"
	"github.com/segyhp/sacco-engine/pkg/response"
)

// TokenValidator matches (*validator.Validator).ValidateToken.
type TokenValidator func(ctx context.Context, token string) (interface{}, error)

// Authenticate rejects requests without a valid bearer token and stores the
// validated claims in the request context.
func Authenticate(validate TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	m := jwtmiddleware.New(
		jwtmiddleware.ValidateToken(validate),
		jwtmiddleware.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			if errors.Is(err, jwtmiddleware.ErrJWTMissing) {
				response.Unauthorized(w, "missing bearer token")
				return
			}
			logger.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
			response.Unauthorized(w, "invalid token")
		}),
	)
	return m.CheckJWT
}

// RequireRole lets through callers holding one of roles.
func RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "authentication required")
				return
			}
			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w, "insufficient role")
		})
	}
}
