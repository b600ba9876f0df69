package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bizledger/cashbank/internal/logging"
	"github.com/bizledger/cashbank/internal/services"
)

type contextKey string

const businessIDKey contextKey = "businessID"

var errMissingBusiness = errors.New("token carries no business_id or user_id claim")

// NewAuthMiddleware validates HS256 bearer tokens signed with secret and
// stores the business the caller acts for in the request context.
func NewAuthMiddleware(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				services.SendErrorResponse(w, "Authorization header required", http.StatusUnauthorized, nil)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				services.SendErrorResponse(w, "Invalid authorization header format", http.StatusUnauthorized, nil)
				return
			}

			businessID, err := validateToken(strings.TrimSpace(parts[1]), secret)
			if err != nil {
				message := "Invalid token"
				if errors.Is(err, jwt.ErrTokenExpired) {
					message = "Token expired"
				}
				logging.FromContext(r.Context()).WithError(err).Debug("Rejected bearer token")
				services.SendErrorResponse(w, message, http.StatusUnauthorized, nil)
				return
			}

			ctx := WithBusinessID(r.Context(), businessID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validateToken(tokenString string, secret []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}

	for _, key := range []string{"business_id", "user_id"} {
		if id := claimString(claims[key]); id != "" {
			return id, nil
		}
	}
	return "", errMissingBusiness
}

// claimString renders an identifier claim. JSON numbers decode as float64
// and must not come out in exponent form.
func claimString(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// WithBusinessID stores the acting business in ctx.
func WithBusinessID(ctx context.Context, businessID string) context.Context {
	return context.WithValue(ctx, businessIDKey, businessID)
}

// BusinessIDFromContext returns the business set by the auth middleware.
func BusinessIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(businessIDKey).(string)
	return id, ok && id != ""
}
