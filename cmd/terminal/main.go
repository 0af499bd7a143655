package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/georgemunganga/tablepos/internal/config"
	"github.com/georgemunganga/tablepos/internal/gateway"
	"github.com/georgemunganga/tablepos/internal/localstate"
	"github.com/georgemunganga/tablepos/internal/logger"
	"github.com/georgemunganga/tablepos/internal/reconcile"
	"github.com/georgemunganga/tablepos/internal/store"
	"github.com/georgemunganga/tablepos/internal/syncchan"
	"github.com/georgemunganga/tablepos/internal/terminal"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadTerminal()
	if err != nil {
		logger.New(logger.Config{}).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Component: "terminal"}).
		With("terminal", cfg.Name)
	log.SetDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Persistent store ─────────────────────────────────────
	local, err := localstate.Open(cfg.LocalDBPath)
	if err != nil {
		log.Error("local state unavailable", "path", cfg.LocalDBPath, "error", err)
		os.Exit(1)
	}
	defer local.Close()

	st := store.New(store.WithPolicy(cfg.Policy), store.WithLocation(cfg.Location))
	if snap, ok, err := local.LoadSnapshot(ctx); err != nil {
		log.Warn("ignoring unreadable local snapshot", "error", err)
	} else if ok {
		st.Restore(snap)
		log.Info("restored local snapshot", "version", snap.Version)
	}
	unwatch := st.OnChange(func(snap store.Snapshot) {
		if err := local.SaveSnapshot(context.Background(), snap); err != nil {
			log.Warn("snapshot not saved", "error", err)
		}
	})
	defer unwatch()

	// ── Backend gateway ──────────────────────────────────────
	// Explicit token first, then a fresh login, then the token cached by the last login.
	api := gateway.New(cfg.APIBaseURL, cfg.APIToken, cfg.HTTPTimeout)
	switch {
	case cfg.APIToken != "":
	case cfg.Username != "":
		token, err := api.Login(ctx, cfg.Username, cfg.Password)
		if err != nil {
			log.Warn("login failed, continuing without a token", "username", cfg.Username, "error", err)
			break
		}
		if err := local.SetSession(ctx, localstate.KeyStaffToken, token); err != nil {
			log.Warn("token not cached", "error", err)
		}
	default:
		if token, ok, _ := local.Session(ctx, localstate.KeyStaffToken); ok {
			api.SetToken(token)
		}
	}

	// ── Sync channel & reconciliation ────────────────────────
	bus := syncchan.NewBus()
	rec := reconcile.New(api, st, log)
	rec.Start(ctx)
	detach := rec.Attach(bus)
	defer detach()

	if cfg.Sync.AMQPURL != "" {
		syncchan.NewSubscriber(cfg.Sync.AMQPURL, cfg.Sync.Exchange, bus, log).Connect(ctx)
	} else {
		log.Info("AMQP_URL not set, running without live updates")
	}

	if rep, err := rec.InitialLoad(ctx); err != nil {
		log.Warn("initial load failed, serving local state", "error", err)
	} else if failed := rep.Failed(); len(failed) > 0 {
		log.Warn("initial load incomplete", "failed", len(failed))
	}

	// ── Local surface ────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	terminal.NewHandler(terminal.NewSession(cfg.Name, st, api, rec, log)).WithDevice(local).RegisterRoutes(router)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("terminal surface starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
	if err := local.SaveSnapshot(shutdownCtx, st.Snapshot()); err != nil {
		log.Warn("final snapshot not saved", "error", err)
	}
	log.Info("terminal stopped")
}
