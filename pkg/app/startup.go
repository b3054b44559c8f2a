package app

import (
	"context"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/vault.banking/config"
	"github.com/evgeny-myasishchev/vault.banking/pkg/dal"
	"github.com/evgeny-myasishchev/vault.banking/pkg/directory"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/vault.banking/pkg/provisioning"
)

var logger = diag.CreateLogger()

// Seed loads fixtures file and provisions users from it
func Seed(ctx context.Context, fixturesFile string, inject Injector) error {
	fixtures, err := provisioning.LoadFixtures(fixturesFile)
	if err != nil {
		return err
	}
	logger.Info(ctx, "Seeding %v users from %v", len(fixtures.Users), fixturesFile)
	return inject(func(svc provisioning.Service) error {
		return svc.Provision(ctx, fixtures)
	})
}

// Prepare makes sure storage is ready to serve requests: creates the schema,
// seeds demo data if required and builds the directory
func Prepare(ctx context.Context, appCfg *config.AppConfig, inject Injector) error {
	if err := inject(func(storage dal.Storage) error {
		return storage.Setup(ctx)
	}); err != nil {
		return errors.Wrap(err, "Failed to setup storage")
	}
	if SeedRequired(appCfg) {
		if err := Seed(ctx, appCfg.Seed.FixturesFile.Value(), inject); err != nil {
			return errors.Wrap(err, "Failed to seed storage")
		}
	}
	return inject(func(storage dal.Storage, resolver directory.Resolver) error {
		return resolver.Load(ctx, storage)
	})
}
