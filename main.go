package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sge-console/cli"
	"sge-console/config"
	"sge-console/core/gateway"
	"sge-console/core/localstore"
	"sge-console/core/obs"
	"sge-console/core/permedit"
	"sge-console/core/rbac"
	"sge-console/core/refresh"
	"sge-console/core/restapi"
	"sge-console/core/session"
	"sge-console/core/state"
	"sge-console/core/utils"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	logger := utils.NewLogger()
	db, err := localstore.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalf("local store init: %v", err)
	}
	defer db.Close()

	if err := localstore.ApplyMigrations(context.Background(), db, cfg, logger); err != nil {
		logger.Fatalf("migrations: %v", err)
	}

	store := state.NewStore()
	sessions := localstore.NewSessionStore(db)
	mgr := session.NewManager(cfg, store, sessions, logger)

	client := restapi.NewClient(cfg, logger, mgr.Token)
	mgr.SetClient(client)

	policy := rbac.NewPolicy(rbac.DefaultRoles())
	app := cli.New(store, mgr, logger)
	bundle := gateway.NewBundle(client, store, mgr, policy, app, logger)
	app.SetBundle(bundle)
	app.SetEditor(permedit.NewEditor(bundle.Permissions, store))
	app.SetPrefs(localstore.NewPrefsStore(db))
	app.SetPolicy(policy)
	mgr.SetBootstrap(bundle.LoadDashboard)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var obsSrv *obs.Server
	if cfg.Observability.Enabled {
		metrics := obs.NewMetrics()
		client.SetObserver(metrics)
		obsSrv = obs.NewServer(cfg, db, metrics, logger)
		go func() {
			if err := obsSrv.Start(); err != nil {
				logger.Errorf("observability server: %v", err)
			}
		}()
	}

	refresher, err := refresh.New(cfg, bundle, store, logger)
	if err != nil {
		logger.Fatalf("refresh schedule: %v", err)
	}
	refresher.Start(ctx)

	if err := mgr.Restore(ctx); err != nil && !errors.Is(err, session.ErrNoSession) {
		logger.Errorf("session restore: %v", err)
	}

	code := app.Run(ctx, os.Args[1:])

	refresher.Stop()
	if obsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obsSrv.Stop(shutdownCtx); err != nil {
			logger.Errorf("graceful shutdown: %v", err)
		}
	}
	os.Exit(code)
}
