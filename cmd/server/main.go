package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dine24/backend/internal/cache"
	"dine24/backend/internal/config"
	"dine24/backend/internal/document"
	"dine24/backend/internal/httpapi"
	"dine24/backend/internal/notify"
	"dine24/backend/internal/service"
	"dine24/backend/internal/store"
	"dine24/backend/internal/store/memory"
	"dine24/backend/internal/store/postgres"
)

func main() {
	cfg := config.Load()

	var closers []io.Closer

	var repo store.Repository
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		closers = append(closers, pg)
		repo = pg
		log.Printf("store: postgres")
	} else {
		repo = memory.NewSeeded()
		log.Printf("store: in-memory (set DATABASE_URL for postgres)")
	}

	var menuCache cache.MenuCache = cache.NoopMenuCache{}
	if cfg.RedisAddr != "" {
		rc := cache.NewRedisMenuCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Printf("WARN: redis unavailable, menu caching disabled: %v", err)
			_ = rc.Close()
		} else {
			closers = append(closers, rc)
			menuCache = rc
			log.Printf("cache: redis at %s", cfg.RedisAddr)
		}
	}

	var transport notify.Transport
	if cfg.MailConfigured() {
		transport = notify.NewHTTPTransport(cfg.MailEndpoint, cfg.MailAPIKey)
		log.Printf("mail: http transport")
	} else {
		transport = notify.NewLogTransport()
		log.Printf("mail: log transport (set MAIL_ENDPOINT and MAIL_API_KEY to deliver)")
	}

	svc := service.New(
		repo,
		menuCache,
		time.Duration(cfg.MenuCacheTTLSeconds)*time.Second,
		document.NewPDFRenderer(),
		document.NewTextRenderer(),
		notify.NewDispatcher(transport, cfg.MailFrom),
	)

	api := httpapi.New(svc, cfg.AllowedOrigin)

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("WARN: shutdown: %v", err)
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			log.Printf("WARN: close: %v", err)
		}
	}
	log.Println("server stopped")
}
