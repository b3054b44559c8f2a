package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/evgeny-myasishchev/vault.banking/pkg/app"
	"github.com/evgeny-myasishchev/vault.banking/pkg/dal"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/diag"
)

var logger = diag.CreateLogger()

var cliArgs struct {
	cmd      string
	fixtures string
}

func init() {
	flag.StringVar(&cliArgs.cmd, "cmd", "", "Command to run. Available commands: setup, seed")
	flag.StringVar(&cliArgs.fixtures, "fixtures", "", "Fixtures file to seed from. Defaults to seed/fixtures-file config param")

	flag.Parse()
}

func showHelpAndExit() {
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	if cliArgs.cmd == "" {
		showHelpAndExit()
	}
	_ = godotenv.Load()
	ctx := context.Background()

	appCfg, err := app.LoadConfig(ctx)
	if err != nil {
		logger.WithError(err).Error(ctx, "Failed to load app config")
		os.Exit(1)
	}

	diag.SetupLoggingSystem(func(setup diag.LoggingSystemSetup) {
		setup.SetLogLevel(appCfg.Log.Level.Value())
		setup.SetLogMode(appCfg.Log.Mode.Value())
	})

	injector := app.BootstrapServices(appCfg)

	setup := func() error {
		return injector(func(storage dal.Storage) error {
			return storage.Setup(ctx)
		})
	}

	switch cliArgs.cmd {
	case "setup":
		if err := setup(); err != nil {
			logger.WithError(err).Error(ctx, "Failed to setup storage")
			os.Exit(1)
		}
	case "seed":
		fixtures := cliArgs.fixtures
		if fixtures == "" {
			fixtures = appCfg.Seed.FixturesFile.Value()
		}
		if err := setup(); err != nil {
			logger.WithError(err).Error(ctx, "Failed to setup storage")
			os.Exit(1)
		}
		if err := app.Seed(ctx, fixtures, injector); err != nil {
			logger.WithError(err).Error(ctx, "Failed to seed storage")
			os.Exit(1)
		}
	default:
		showHelpAndExit()
	}
}
