package api

import (
	"context"
	"net/http"
	"schowek-plikow/internal/auth"
	"strings"
)

type contextKey string

const userContextKey = contextKey("user")

// AuthMiddleware odcina każdą chronioną operację zanim cokolwiek innego
// się wykona: 401 gdy nagłówka brak lub jest zniekształcony, 403 gdy
// token nie przechodzi weryfikacji podpisu albo wygasł.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, errAuth, "Authorization header required")
			return
		}

		headerParts := strings.Split(authHeader, " ")
		if len(headerParts) != 2 || headerParts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, errAuth, "Invalid Authorization header format")
			return
		}

		claims, err := auth.VerifyJWT(headerParts[1], s.config.JWT.Secret)
		if err != nil {
			respondError(w, http.StatusForbidden, errAuth, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetUserFromContext(ctx context.Context) *auth.AppClaims {
	if claims, ok := ctx.Value(userContextKey).(*auth.AppClaims); ok {
		return claims
	}
	return nil
}
