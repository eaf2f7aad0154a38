// Command wsgikit-server is a small echo server used to exercise the parser
// against real HTTP clients. Every request is parsed with the configured
// limits, uploaded files are moved into the uploads directory, and the
// resulting request map is returned as JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Mikhus/wsgikit"
	"github.com/Mikhus/wsgikit/formdata"
	"github.com/Mikhus/wsgikit/pkg/config"
	"github.com/Mikhus/wsgikit/pkg/logger"
)

type serverConfig struct {
	Addr             string        `env:"SERVER_ADDR" envDefault:":8080"`
	UploadsDir       string        `env:"UPLOADS_DIR" envDefault:"./uploads"`
	TempDir          string        `env:"TEMP_DIR"`
	MaxFiles         int64         `env:"MAX_FILES" envDefault:"16"`
	MaxFileSize      int64         `env:"MAX_FILE_SIZE" envDefault:"10485760"`
	MaxContentLength int64         `env:"MAX_CONTENT_LENGTH" envDefault:"33554432"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func main() {
	var cfg serverConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithAttr(slog.String("service", "wsgikit-server")))

	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		log.Error("create uploads dir", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Handle("/*", echoHandler(cfg, log))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
}

// echoHandler parses the incoming request and responds with its ToMap
// rendering. Uploaded files are moved into the uploads directory before the
// map is serialized, so the paths in the FILES section point at their final
// location.
func echoHandler(cfg serverConfig, log *slog.Logger) http.HandlerFunc {
	limits := formdata.Limits{
		MaxFiles:         cfg.MaxFiles,
		MaxFileSize:      cfg.MaxFileSize,
		MaxContentLength: cfg.MaxContentLength,
	}

	return func(w http.ResponseWriter, r *http.Request) {
		req, err := wsgikit.New(r,
			wsgikit.WithLimits(limits),
			wsgikit.WithTempDir(cfg.TempDir),
			wsgikit.WithLogger(log),
		)
		if err != nil {
			status := http.StatusBadRequest
			switch {
			case errors.Is(err, formdata.ErrTooManyFiles),
				errors.Is(err, formdata.ErrFileTooLarge),
				errors.Is(err, formdata.ErrBodyTooLarge):
				status = http.StatusRequestEntityTooLarge
			case errors.Is(err, formdata.ErrMalformed):
				status = http.StatusBadRequest
			default:
				status = http.StatusInternalServerError
			}
			log.Warn("parse request", "error", err, "status", status)
			http.Error(w, err.Error(), status)
			return
		}
		defer req.Close()

		if req.HasFiles() {
			if err := req.Uploader().MoveAll(cfg.UploadsDir, true); err != nil {
				log.Error("move uploads", "error", err)
				http.Error(w, "failed to store uploads", http.StatusInternalServerError)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if err := json.NewEncoder(w).Encode(req.ToMap()); err != nil {
			log.Error("encode response", "error", err)
		}
	}
}
