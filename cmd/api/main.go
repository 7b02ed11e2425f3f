package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/socialapp/internal/config"
	httpx "github.com/geocoder89/socialapp/internal/http"
	"github.com/geocoder89/socialapp/internal/observability"
	"github.com/geocoder89/socialapp/internal/repo/memory"
	"github.com/geocoder89/socialapp/internal/repo/mongodb"
	"github.com/geocoder89/socialapp/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	for _, w := range cfg.Warnings {
		log.Warn("config value ignored", "detail", w)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "err", err)
		os.Exit(1)
	}

	log.Info("shutdown complete")
}

// run owns every resource so deferred cleanup happens before main exits.
func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	tracing := false
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, cfg.Env)
		if err != nil {
			log.Error("tracing disabled", "err", err)
		} else {
			tracing = true
			defer func() {
				tctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(tctx)
			}()
		}
	}

	deps := httpx.Deps{Prom: prom, Tracing: tracing}

	// wire up the store; a failed connect leaves it unavailable, the process keeps serving
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory store, data is lost on restart")
		deps.Users = service.NewUserService(memory.NewUsersRepo(), prom)
		deps.Posts = service.NewPostService(memory.NewPostsRepo(), prom)

	default:
		cctx, cancel := config.WithTimeout(10 * time.Second)
		store := mongodb.Connect(cctx, mongodb.Config{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDB,
			Observer: prom,
		}, log)
		cancel()

		defer func() {
			dctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			if err := store.Disconnect(dctx); err != nil {
				log.Error("mongodb disconnect failed", "err", err)
			}
		}()

		deps.Users = service.NewUserService(mongodb.NewUsersRepo(store), prom)
		deps.Posts = service.NewPostService(mongodb.NewPostsRepo(store), prom)
		deps.Ready = store.Ping
	}

	// set up routers with the log
	router := httpx.NewRouter(log, cfg, deps)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.StoreDriver)

		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("server shutting down")

		sctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
