package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crestview/residency-api/internal/handlers"
	"github.com/crestview/residency-api/internal/repository"
	"github.com/crestview/residency-api/internal/service"
	"github.com/crestview/residency-api/pkg/auth"
	"github.com/crestview/residency-api/pkg/cache"
	"github.com/crestview/residency-api/pkg/config"
	"github.com/crestview/residency-api/pkg/database"
	"github.com/crestview/residency-api/pkg/events"
	"github.com/crestview/residency-api/pkg/logger"
	"github.com/crestview/residency-api/pkg/mailer"
	mw "github.com/crestview/residency-api/pkg/middleware"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var eventBus events.Publisher
	if bus, err := events.NewNATSEventBus(cfg.NATS.URL); err != nil {
		logger.Warn("NATS unreachable, events disabled", "error", err)
		eventBus = events.NoopPublisher{}
	} else {
		eventBus = bus
	}
	defer eventBus.Close()

	idempotencyStore := cache.New(cfg.Redis)
	defer idempotencyStore.Close()

	var mail mailer.Service
	if cfg.Email.DevMode {
		mail = mailer.NewDevMailer()
	} else {
		mail = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.From)
	}

	// Repositories
	userRepo := repository.NewUserRepository(pool)
	apartmentRepo := repository.NewApartmentRepository(pool)
	agreementRepo := repository.NewAgreementRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	announcementRepo := repository.NewAnnouncementRepository(pool)

	// Services
	userService := service.NewUserService(userRepo, eventBus)
	catalogService := service.NewCatalogService(apartmentRepo)
	agreementService := service.NewAgreementService(agreementRepo, userRepo, eventBus, mail)
	couponService := service.NewCouponService(couponRepo)
	billingService := service.NewBillingService(cfg.Stripe.SecretKey, paymentRepo, eventBus)
	announcementService := service.NewAnnouncementService(announcementRepo, eventBus)

	verifier := auth.NewHSVerifier(cfg.Auth.JWTSecret)
	h := handlers.New(verifier, userService, catalogService, agreementService, couponService, billingService, announcementService)

	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("residency-api"))
	r.Use(mw.Logging)
	r.Use(mw.CORS(cfg.CORS.AllowedOrigins))
	r.Use(mw.Health)
	r.Use(mw.Idempotency(idempotencyStore))

	verified := h.RequireAuth("")
	adminOnly := h.RequireAuth("admin")

	// Public
	r.Get("/apartments", h.ListApartments)
	r.Get("/coupons", h.ListCoupons)

	// Verified callers
	r.With(verified).Get("/users", h.GetUsers)
	r.With(verified).Post("/users", h.RegisterUser)
	r.With(verified).Get("/agreements", h.ListAgreements)
	r.With(verified).Post("/agreements", h.SubmitAgreement)
	r.With(verified).Get("/member-agreements", h.GetMemberAgreement)
	r.With(verified).Get("/announcements", h.ListAnnouncements)
	r.With(verified).Post("/create-payment-intent", h.CreatePaymentIntent)
	r.With(verified).Get("/payments", h.ListPayments)
	r.With(verified).Post("/payments", h.RecordPayment)
	r.With(verified).Get("/validate-coupon", h.ValidateCoupon)

	// Admin only
	r.With(adminOnly).Patch("/users", h.SetUserRole)
	r.With(adminOnly).Patch("/agreements/{id}/accept", h.AcceptAgreement)
	r.With(adminOnly).Patch("/agreements/{id}/reject", h.RejectAgreement)
	r.With(adminOnly).Post("/announcements", h.CreateAnnouncement)
	r.With(adminOnly).Post("/coupons", h.CreateCoupon)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down residency API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting residency API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
