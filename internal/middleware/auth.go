package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	OperatorIDKey   contextKey = "operator_id"
	OperatorRoleKey contextKey = "operator_role"
)

// Roles accepted on mutating routes
const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// OperatorClaims are carried by operator bearer tokens. The operator id is the
// registered subject.
type OperatorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// NewOperatorToken signs an HS256 token for an operator
func NewOperatorToken(secret, operatorID, role string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("signing secret is empty")
	}
	if operatorID == "" || role == "" {
		return "", errors.New("operator id and role are required")
	}

	now := time.Now()
	claims := OperatorClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   operatorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// AuthMiddleware validates operator tokens and stores the claims in the request context
func AuthMiddleware(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims := &OperatorClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}

			if !token.Valid || claims.Subject == "" || claims.Role == "" {
				logger.Debug("Invalid token claims")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			ctx := context.WithValue(r.Context(), OperatorIDKey, claims.Subject)
			ctx = context.WithValue(ctx, OperatorRoleKey, claims.Role)

			logger.Debug("Operator authenticated",
				zap.String("operator_id", claims.Subject),
				zap.String("role", claims.Role),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetOperatorID extracts the operator id from request context
func GetOperatorID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(OperatorIDKey).(string)
	return id, ok
}

// GetOperatorRole extracts the operator role from request context
func GetOperatorRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(OperatorRoleKey).(string)
	return role, ok
}
