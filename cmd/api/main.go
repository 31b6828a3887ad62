package main

import (
	"net/http"
	"os"
	"time"

	"pet-clinic-booking/internal/config"
	"pet-clinic-booking/internal/platform/logger"
	"pet-clinic-booking/internal/router"
)

func main() {
	cfg := config.Load()
	log := logger.NewFromEnv()

	r := router.NewRouter(router.Options{
		Config: cfg,
		Log:    log,
	})

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 5 * time.Second,
		// WriteTimeout alto: el stream SSE del dashboard es long-lived.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": srv.Addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
