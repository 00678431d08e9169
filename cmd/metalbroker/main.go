// Command metalbroker runs the resource leasing broker: the HTTP API and
// the background reconciler that advances offer, lease, and owner change
// statuses.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/metalbroker/metalbroker/internal/api"
	"github.com/metalbroker/metalbroker/internal/auth"
	"github.com/metalbroker/metalbroker/internal/config"
	"github.com/metalbroker/metalbroker/internal/db"
	"github.com/metalbroker/metalbroker/internal/db/migrations"
	"github.com/metalbroker/metalbroker/internal/dbpool"
	"github.com/metalbroker/metalbroker/internal/service"
	"github.com/metalbroker/metalbroker/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	if err := run(log); err != nil {
		log.WithError(err).Fatal("broker exited with error")
	}
}

func run(log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return err
	}

	base := store.Base{Pool: pool, Log: log}
	offerStore := store.NewOfferStore(base)
	leaseStore := store.NewLeaseStore(base)
	changeStore := store.NewOwnerChangeStore(base)
	resourceStore := store.NewResourceStore(base)

	enforcer := auth.NewEnforcer(cfg.AuthEnabled)

	offerSvc := service.NewOfferService(offerStore, leaseStore, resourceStore, enforcer, log)
	leaseSvc := service.NewLeaseService(leaseStore, resourceStore, enforcer, log)
	changeSvc := service.NewOwnerChangeService(changeStore, enforcer, log)
	reconciler := service.NewReconciler(offerStore, leaseStore, changeStore, log, cfg.ReconcileInterval)

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:          log,
		Pool:         pool,
		Offers:       offerSvc,
		Leases:       leaseSvc,
		OwnerChanges: changeSvc,
		JWTSecret:    cfg.JWTSecret.Value(),
		AuthEnabled:  cfg.AuthEnabled,
		CORSOrigins:  cfg.CORSOrigins,
		Version:      config.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":    cfg.Addr(),
			"version": config.Version,
		}).Info("broker listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		err := reconciler.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("broker stopped")

	return nil
}
