package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Timeout ограничивает время обработки запроса дедлайном контекста
// Хранилище и транзакции получают этот контекст и прерываются по истечении срока
func Timeout(timeout time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
