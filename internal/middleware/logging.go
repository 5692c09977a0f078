package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	n, err := sw.ResponseWriter.Write(b)
	sw.size += n
	return n, err
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Logging кладёт в контекст логгер с rid (zerolog.Ctx в хендлерах) и пишет
// access-лог после ответа.
func Logging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			l := logger.With().Str("rid", GetRequestID(r)).Logger()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r.WithContext(l.WithContext(r.Context())))

			if sw.status == 0 {
				sw.status = http.StatusOK
			}
			ev := l.Info()
			if sw.status >= http.StatusInternalServerError {
				ev = l.Error()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sw.status).
				Int("size", sw.size).
				Dur("dur", time.Since(start)).
				Msg("http")
		})
	}
}
