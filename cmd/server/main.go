package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bastion/internal/config"
	"bastion/internal/game"
	"bastion/internal/session"
	"bastion/internal/web"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	var seed *game.Roster
	if cfg.SeedRoster != "" {
		seed, err = game.LoadRoster(cfg.SeedRoster)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("seeding sessions with %d characters from %s", seed.Len(), cfg.SeedRoster)
	}

	tmpl, err := web.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		log.Fatal(err)
	}

	srv := &web.Server{
		Store:            session.NewMemoryStore[*game.Roster](),
		Tmpl:             tmpl,
		Seed:             seed,
		StaticDir:        cfg.StaticDir,
		MaxPortraitBytes: cfg.MaxPortraitBytes,
		SecureCookies:    cfg.SecureCookies,
	}

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("listening on %s", cfg.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
