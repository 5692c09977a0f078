package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey struct{}

const HeaderRequestID = "X-Request-ID"

// RequestID берёт X-Request-ID клиента или генерирует UUID и возвращает его в ответе.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(HeaderRequestID)
			if rid == "" || len(rid) > 128 {
				rid = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, rid)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, rid)))
		})
	}
}

func GetRequestID(r *http.Request) string {
	rid, _ := r.Context().Value(ctxKey{}).(string)
	return rid
}
