package handler

import (
	"net/http"

	"github.com/qrtrack/go-qr-tracker/pkg/adapters/handler"
	"github.com/qrtrack/go-qr-tracker/pkg/adapters/qr"
	"github.com/qrtrack/go-qr-tracker/pkg/adapters/repository/sqlite"
	"github.com/qrtrack/go-qr-tracker/pkg/config"
	"github.com/qrtrack/go-qr-tracker/pkg/core/services"
)

var mux http.Handler

func init() {
	cfg := config.Load()

	// Note: On Vercel, db.sqlite is ephemeral unless DATABASE_URL points at a
	// remote libsql/Turso database.
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		panic(err)
	}

	service := services.NewLinkService(repo, qr.NewEncoder(cfg.QRSize), nil, cfg.BaseURL)
	mux = handler.NewRouter(service)
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
