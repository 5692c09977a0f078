package handlers

import (
	"encoding/json"
	"net/http"

	"shade-resolver/internal/resolve/service"
)

// Health: 200 когда каталог загружен, 503 пока индекса нет.
func Health(live *service.Live) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, map[string]any{"status": "ok"}
		if eng, err := live.Load(); err != nil {
			status, body = http.StatusServiceUnavailable, map[string]any{"status": "no_catalogue"}
		} else {
			body["brands"] = eng.Index().Stats().Brands
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
