package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/evgeny-myasishchev/vault.banking/pkg/app"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/router"
	"github.com/evgeny-myasishchev/vault.banking/pkg/version"
)

var logger = diag.CreateLogger()

func main() {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg, err := app.LoadConfig(ctx)
	if err != nil {
		logger.WithError(err).Error(ctx, "Failed to load app config")
		os.Exit(1)
	}

	diag.SetupLoggingSystem(func(setup diag.LoggingSystemSetup) {
		setup.SetLogLevel(appCfg.Log.Level.Value())
		setup.SetLogMode(appCfg.Log.Mode.Value())
	})

	logger.Info(ctx, "Starting %v, version: %v (%v@%v), env: %v",
		version.AppName, version.Version, version.GitRef, version.GitHash, appCfg.Env)

	injector := app.BootstrapServices(appCfg)

	if err := app.Prepare(ctx, appCfg, injector); err != nil {
		logger.WithError(err).Error(ctx, "Failed to prepare storage")
		os.Exit(1)
	}

	if err := injector(func(r router.Router) error {
		return router.StartServer(ctx, appCfg.Server.Port.Value(), r)
	}); err != nil {
		logger.WithError(err).Error(ctx, "Server stopped with error")
		os.Exit(1)
	}
	logger.Info(ctx, "Server stopped")
}
