package handler

import (
	"encoding/json"
	"net/http"

	"github.com/qrtrack/go-qr-tracker/pkg/ports"
)

// NewRouter creates and configures the main application router
func NewRouter(service ports.LinkService) http.Handler {
	h := NewHTTPHandler(service)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		res := map[string]string{
			"message": "ok",
		}
		_ = json.NewEncoder(w).Encode(&res)
	})

	mux.HandleFunc("GET /s/{short_code}", h.Redirect)

	mux.HandleFunc("POST /api/v1/qrcodes", h.Create)
	mux.HandleFunc("GET /api/v1/qrcodes", h.List)
	mux.HandleFunc("GET /api/v1/qrcodes/{id}/analytics", h.Analytics)

	return Logging(Recover(mux))
}
