package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookingapi/internal/api"
	"bookingapi/internal/api/middleware"
	"bookingapi/pkg/factory"
)

const version = "1.0.0"

func main() {
	appFactory, err := factory.NewFactory(context.Background())
	if err != nil {
		fmt.Printf("Application could not be initialized: %v\n", err)
		os.Exit(1)
	}

	log := appFactory.GetLogger()
	cfg := appFactory.GetConfig()

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := appFactory.Close(ctx); err != nil {
			log.Error("Resources could not be released", map[string]interface{}{"error": err.Error()})
		}
	}()

	log.Info("Starting application", map[string]interface{}{
		"env":    cfg.AppEnv,
		"driver": cfg.Database.Driver,
	})

	mux := http.NewServeMux()

	api.NewUserHandler(appFactory.GetUserService(), log).RegisterRoutes(mux)
	api.NewPropertyHandler(appFactory.GetPropertyService(), appFactory.GetBookingService(), log).RegisterRoutes(mux)
	api.NewBookingHandler(appFactory.GetBookingService(), log).RegisterRoutes(mux)
	api.NewBlockHandler(appFactory.GetBookingService(), log).RegisterRoutes(mux)
	api.NewHealthHandler(appFactory, log, version).RegisterRoutes(mux)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      middleware.Chain(mux),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	g := &run.Group{}
	g.Add(func() error {
		log.Info("Starting HTTP server", map[string]interface{}{"port": cfg.Server.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("HTTP server could not shut down cleanly", map[string]interface{}{"error": err.Error()})
		}
	})

	metricsServer := &http.Server{Addr: ":" + cfg.Server.MetricsPort}
	g.Add(func() error {
		m := http.NewServeMux()
		m.Handle("/metrics", promhttp.Handler())
		metricsServer.Handler = m
		log.Info("Starting metrics server", map[string]interface{}{"port": cfg.Server.MetricsPort})
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		if err := metricsServer.Close(); err != nil {
			log.Error("Metrics server could not be stopped", map[string]interface{}{"error": err.Error()})
		}
	})

	g.Add(run.SignalHandler(context.Background(), syscall.SIGINT, syscall.SIGTERM))

	if err := g.Run(); err != nil {
		var signalErr run.SignalError
		if !errors.As(err, &signalErr) {
			log.Error("Server stopped with error", map[string]interface{}{"error": err.Error()})
			return
		}
	}

	log.Info("Server stopped", nil)
}
