// cmd/web/main.go
//
// Formcheck – HTTP entry point.
//
// Start-up
// --------
//
//  1. Load configuration (conf/.env → conf/global.yaml → FORMCHECK_* env).
//
//  2. Start daily rotating logger (tees to console when running in a TTY or
//     when log.tee is set).
//
//  3. Build the form Registry from YAML directories or the form_field table.
//
//  4. Open the optional GeoIP database used to tag request logs.
//
//  5. Serve the chi router until SIGINT or SIGTERM, then drain for up to
//     ten seconds.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/yanizio/formcheck/internal/bootstrap"
	"github.com/yanizio/formcheck/internal/config"
	"github.com/yanizio/formcheck/internal/logger"
	"github.com/yanizio/formcheck/internal/requestinfo"
	"github.com/yanizio/formcheck/internal/server"
)

const shutdownGrace = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(logger.Options{
		Dir:   cfg.Log.Dir,
		Level: cfg.Log.Level,
		Tee:   cfg.Log.Tee || logger.RunningInTTY(),
	})
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer logOut.Sync()

	//
	// ── 1.  Forms ───────────────────────────────────────────────────────
	//
	forms, err := bootstrap.Forms(ctx, cfg, logOut)
	if err != nil {
		logOut.Fatalw("load forms", "err", err)
	}

	//
	// ── 2.  GeoIP (optional) ────────────────────────────────────────────
	//
	var geo *requestinfo.Geo
	if cfg.GeoIP.DBPath != "" {
		if geo, err = requestinfo.OpenGeo(cfg.GeoIP.DBPath); err != nil {
			logOut.Warnw("geoip disabled", "err", err)
		}
	}
	defer geo.Close()

	//
	// ── 3.  HTTP server ─────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, server.NewRouter(forms, logOut, server.Options{
		ForceHTTPS: cfg.HTTP.ForceHTTPS,
		Geo:        geo,
	}))

	go func() {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logOut.Errorw("http server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logOut.Infow("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logOut.Errorw("graceful shutdown", "err", err)
	}
}
