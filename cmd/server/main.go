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

	"photohunt/config"
	"photohunt/internal/database"
	"photohunt/internal/router"
	"photohunt/pkg/cloudinary"
)

func main() {
	cfg := config.Load()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("[startup] database connection failed: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("[startup] migration failed: %v", err)
	}
	database.SeedAdmin(db)

	var cld cloudinary.Client
	if cfg.Cloudinary.CloudName != "" {
		cld, err = cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Fatalf("[startup] cloudinary init failed: %v", err)
		}
	} else {
		log.Println("[startup] cloudinary not configured, image uploads disabled")
	}

	if cfg.PayPal.WebhookID == "" {
		log.Println("[startup] PAYPAL_WEBHOOK_ID not set, inbound webhooks will be rejected")
	}
	if cfg.PayPal.AllowSandboxBypass {
		log.Println("[startup] sandbox signature bypass is ENABLED, do not use in production")
	}

	engine := router.New(cfg, db, cld)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Printf("[startup] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[startup] server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[shutdown] draining connections")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[shutdown] forced: %v", err)
	}
	log.Println("[shutdown] done")
}
