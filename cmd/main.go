package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/autodetail/internal/auth"
	"github.com/ukydev/autodetail/internal/config"
	"github.com/ukydev/autodetail/internal/dashboard"
	"github.com/ukydev/autodetail/internal/db"
	"github.com/ukydev/autodetail/internal/domains"
	"github.com/ukydev/autodetail/internal/events"
	"github.com/ukydev/autodetail/internal/handlers"
	"github.com/ukydev/autodetail/internal/middleware"
	"github.com/ukydev/autodetail/internal/scheduler"
	"github.com/ukydev/autodetail/internal/vehicles"
	"github.com/ukydev/autodetail/internal/vin"
)

// buildDeps wires the collections and outbound clients into the router dependencies.
func buildDeps(cfg config.Config, store *db.Store, publisher events.Publisher) (handlers.Deps, error) {
	scannerConfig := vin.DefaultScannerConfig()
	scanner, err := vin.NewScanner(scannerConfig)
	if err != nil {
		return handlers.Deps{}, err
	}
	scanner.OnDetected(func(d vin.Detection) {
		log.WithFields(log.Fields{
			"vin":         d.VIN,
			"format":      d.Format,
			"check_digit": d.CheckDigit,
		}).Info("VIN detected")
	})

	deps := handlers.Deps{
		Auth:         auth.NewService(cfg.JWTSecret, cfg.JWTExpiry),
		Users:        store.Users,
		Tenants:      store.Tenants,
		Services:     store.Services,
		Assessments:  store.Assessments,
		Estimates:    store.Estimates,
		Invoices:     store.Invoices,
		Appointments: store.Appointments,
		Files:        store.Files,
		Blobs:        store.Blobs,
		Parts:        store.Parts,
		Reports:      store,

		Scheduler:     scheduler.NewClient(cfg.SchedulerURL, nil),
		Vehicles:      vehicles.NewClient(cfg.VehicleDetailsAPI, nil),
		Scanner:       scanner,
		ScannerConfig: scannerConfig,
		Events:        publisher,
		Dashboard: dashboard.NewService(dashboard.Sources{
			Reports:      store,
			Users:        store.Users,
			Assessments:  store.Assessments,
			Appointments: store.Appointments,
			Estimates:    store.Estimates,
		}),

		RootDomain:     cfg.RootDomain,
		UploadMaxBytes: cfg.UploadMaxBytes,
		RateLimit:      middleware.NewRateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow),
	}

	// Leave the interface nil unless the client exists.
	if cfg.DomainsConfigured() {
		client, err := domains.NewClient(domains.Config{
			BaseURL:   cfg.VercelAPIURL,
			Token:     cfg.VercelToken,
			TeamID:    cfg.VercelTeamID,
			ProjectID: cfg.VercelProjectID,
		}, nil)
		if err != nil {
			log.WithError(err).Warn("Domain management disabled")
		} else {
			deps.Domains = client
		}
	} else {
		log.Info("Vercel credentials not set, tenant subdomains will not be provisioned")
	}

	return deps, nil
}

func connectEvents(cfg config.Config) events.Publisher {
	if cfg.MQTTBroker == "" {
		return events.Nop{}
	}
	publisher, err := events.Connect(cfg.MQTTBroker, cfg.MQTTClientID)
	if err != nil {
		log.WithError(err).WithField("broker", cfg.MQTTBroker).Warn("MQTT unavailable, events disabled")
		return events.Nop{}
	}
	log.WithField("broker", cfg.MQTTBroker).Info("Publishing tenant events over MQTT")
	return publisher
}

func newServer(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func main() {
	cfg := config.Load()
	cfg.ConfigureLogging()

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()
	log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB")

	store, err := db.NewStore(client.Database(cfg.MongoDB))
	if err != nil {
		log.WithError(err).Fatal("Failed to open store")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Fatal("Failed to create indexes")
	}
	cancel()

	publisher := connectEvents(cfg)
	defer publisher.Close()

	deps, err := buildDeps(cfg, store, publisher)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure server")
	}

	server := newServer(cfg, handlers.NewRouter(deps))
	go func() {
		log.WithFields(log.Fields{"port": cfg.Port, "root_domain": cfg.RootDomain}).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
	log.Info("Server stopped")
}
