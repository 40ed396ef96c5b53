package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"health-directory-api/internal/auth"
)

type ctxKey string

const UserIDKey ctxKey = "uid"

// UserID returns the authenticated user id stored by Auth, or 0 when the
// request was not authenticated.
func UserID(ctx context.Context) int64 {
	if v, ok := ctx.Value(UserIDKey).(int64); ok {
		return v
	}
	return 0
}

// Auth requires a valid bearer token and stores the user id in the request
// context.
func Auth(secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if raw == "" || raw == r.Header.Get("Authorization") {
				unauthorized(w, "Token de acceso requerido")
				return
			}

			claims, err := auth.ParseToken(raw, secret)
			if err != nil {
				unauthorized(w, "Token inválido o expirado")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, mensaje string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"mensaje": mensaje, "codigo": http.StatusUnauthorized})
}
