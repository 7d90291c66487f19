package middleware

import (
	"net/http"
	"slices"

	"go.uber.org/zap"
)

// RequireRole rejects requests whose operator role is not one of allowedRoles
func RequireRole(allowedRoles []string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetOperatorRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if !slices.Contains(allowedRoles, role) {
				logger.Warn("Operator role not authorized",
					zap.String("role", role),
					zap.Strings("allowed_roles", allowedRoles),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireOperator allows operators and admins
func RequireOperator(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole([]string{RoleOperator, RoleAdmin}, logger)
}
