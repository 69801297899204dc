package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/tdis/disaster-chatbot/internal/adapters/http"
	"github.com/tdis/disaster-chatbot/internal/bootstrap"
	"github.com/tdis/disaster-chatbot/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	// Kick off the initial corpus load; readiness is reported through
	// POST /api/health while it runs.
	app.CorpusManager.TriggerLoad(ctx)

	if app.Queue != nil {
		go func() {
			err := app.Queue.SubscribeCorpusRefresh(ctx, func(handlerCtx context.Context, reason string) error {
				app.Logger.Info("corpus refresh requested", "reason", reason)
				app.CorpusManager.Refresh(handlerCtx)
				return nil
			})
			if err != nil && ctx.Err() == nil {
				log.Printf("corpus refresh subscription error: %v", err)
			}
		}()
	}

	router := httpadapter.NewRouter(app.ChatUC, app.CorpusManager, app.StatusUC, app.HTTPMetrics, httpadapter.Options{
		ServiceName:       "api",
		APIRateLimitRPS:   cfg.APIRateLimitRPS,
		APIRateLimitBurst: cfg.APIRateLimitBurst,
		MaxInFlight:       cfg.APIMaxInFlight,
	}).Handler()
	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("api listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("api shutdown error: %v", err)
	}
}
