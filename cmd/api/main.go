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
	_ "github.com/lib/pq"

	"github.com/georgemunganga/tablepos/internal/config"
	"github.com/georgemunganga/tablepos/internal/database"
	"github.com/georgemunganga/tablepos/internal/domain"
	"github.com/georgemunganga/tablepos/internal/httpx"
	"github.com/georgemunganga/tablepos/internal/logger"
	"github.com/georgemunganga/tablepos/internal/modules/auth"
	"github.com/georgemunganga/tablepos/internal/modules/billing"
	"github.com/georgemunganga/tablepos/internal/modules/catalog"
	"github.com/georgemunganga/tablepos/internal/modules/customer"
	"github.com/georgemunganga/tablepos/internal/modules/expense"
	"github.com/georgemunganga/tablepos/internal/modules/kitchen"
	"github.com/georgemunganga/tablepos/internal/modules/order"
	"github.com/georgemunganga/tablepos/internal/modules/reports"
	"github.com/georgemunganga/tablepos/internal/modules/settings"
	"github.com/georgemunganga/tablepos/internal/modules/staff"
	"github.com/georgemunganga/tablepos/internal/modules/waitercall"
	"github.com/georgemunganga/tablepos/internal/syncchan"
)

func main() {
	config.LoadDotEnv()
	cfg, err := config.LoadAPI()
	if err != nil {
		logger.New(logger.Config{}).Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Component: "api"})
	log.SetDefault()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := database.Migrate(db, log); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
	}

	// ── Sync channel ─────────────────────────────────────────
	var pub syncchan.Publisher = syncchan.NopPublisher{}
	if cfg.Sync.AMQPURL != "" {
		p := syncchan.NewAMQPPublisher(cfg.Sync.AMQPURL, cfg.Sync.Exchange, "api", log)
		go p.Run(ctx)
		pub = p
	} else {
		log.Info("AMQP_URL not set, updates will not be broadcast")
	}
	defer pub.Close()
	notify := syncchan.NewNotifier(pub, log)

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			httpx.Respond(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// ── Identity ────────────────────────────────────────────
	staffService := staff.NewService(staff.NewPostgresRepository(db), notify)
	if created, err := staffService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Error("could not seed admin", "error", err)
		os.Exit(1)
	} else if created {
		log.Info("seeded admin account", "username", cfg.AdminUsername)
	}

	authService := auth.NewService(staffService, cfg.JWTSecret, cfg.TokenTTL)
	auth.NewHandler(authService).RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(authService))
		adminOnly := auth.RequireRole(domain.RoleAdmin)

		staff.NewHandler(staffService, adminOnly).RegisterRoutes(r)
		settings.NewHandler(settings.NewService(settings.NewPostgresRepository(db), notify), adminOnly).RegisterRoutes(r)

		// ── Menu & floor ────────────────────────────────────────
		orderService := order.NewService(order.NewPostgresRepository(db), cfg.Policy, notify)
		billingService := billing.NewService(billing.NewPostgresRepository(db), notify)

		catalog.NewHandler(catalog.NewService(catalog.NewPostgresRepository(db), notify)).RegisterRoutes(r)
		order.NewHandler(orderService).RegisterRoutes(r)
		billing.NewHandler(billingService).RegisterRoutes(r)
		waitercall.NewHandler(waitercall.NewService(waitercall.NewPostgresRepository(db), notify)).RegisterRoutes(r)
		kitchen.NewHandler(kitchen.NewService(orderService)).RegisterRoutes(r)

		// ── Customers & books ──────────────────────────────────
		expenseService := expense.NewService(expense.NewPostgresRepository(db), notify)
		customer.NewHandler(customer.NewService(customer.NewPostgresRepository(db), notify)).RegisterRoutes(r)
		expense.NewHandler(expenseService, actor).RegisterRoutes(r)

		books := reports.Books{Orders: orderService, Bills: billingService, Expenses: expenseService}
		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			reports.NewHandler(reports.NewService(books, cfg.Location)).RegisterRoutes(r)
		})
	})

	// ── Start Server ─────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("api server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "error", err)
	}
	log.Info("api server stopped")
}

// actor names the authenticated caller.
func actor(r *http.Request) string {
	if c, ok := auth.FromContext(r.Context()); ok {
		return c.Username
	}
	return ""
}
