package app

import (
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"github.com/evgeny-myasishchev/vault.banking/config"
	"github.com/evgeny-myasishchev/vault.banking/pkg/api"
	"github.com/evgeny-myasishchev/vault.banking/pkg/auth"
	"github.com/evgeny-myasishchev/vault.banking/pkg/dal"
	"github.com/evgeny-myasishchev/vault.banking/pkg/directory"
	"github.com/evgeny-myasishchev/vault.banking/pkg/fees"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/diag"
	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/router"
	"github.com/evgeny-myasishchev/vault.banking/pkg/provisioning"
	"github.com/evgeny-myasishchev/vault.banking/pkg/transfers"
	"github.com/evgeny-myasishchev/vault.banking/pkg/version"
)

// Injector is a function that will inject desired services
// to a target function
type Injector func(function interface{}) error

func mustProvide(c *dig.Container, constructor interface{}) {
	if err := c.Provide(constructor); err != nil {
		panic(err)
	}
}

// BootstrapServices setup di container with all app services
func BootstrapServices(appCfg *config.AppConfig) Injector {
	c := dig.New()

	mustProvide(c, func() (dal.Storage, error) {
		driver := appCfg.Storage.Driver.Value()
		if driver == StorageMemory {
			return dal.NewMemoryStorage(), nil
		}
		db, err := dal.OpenDB(driver, appCfg.Storage.DSN.Value())
		if err != nil {
			return nil, err
		}
		return dal.NewSQLStorage(dal.WithSQLDb(db))
	})

	mustProvide(c, directory.NewResolver)

	mustProvide(c, func() fees.Policy {
		return fees.NewPolicy(appCfg.Fees.DomesticCountry.Value())
	})

	mustProvide(c, func(storage dal.Storage, resolver directory.Resolver, policy fees.Policy) transfers.Service {
		return transfers.NewService(
			transfers.WithStorage(storage),
			transfers.WithResolver(resolver),
			transfers.WithFeePolicy(policy),
		)
	})

	mustProvide(c, func() auth.SessionStore {
		if appCfg.Sessions.Driver.Value() == SessionsRedis {
			client := redis.NewClient(&redis.Options{Addr: appCfg.Sessions.RedisAddr.Value()})
			return auth.NewRedisSessionStore(client, version.AppName+":sessions")
		}
		return auth.NewMemorySessionStore()
	})

	mustProvide(c, func(storage dal.Storage, sessions auth.SessionStore) auth.Service {
		return auth.NewService(
			auth.WithStorage(storage),
			auth.WithSessionStore(sessions),
			auth.WithSessionTTL(time.Duration(appCfg.Sessions.TTLMinutes.Value())*time.Minute),
		)
	})

	mustProvide(c, func(storage dal.Storage, resolver directory.Resolver) provisioning.Service {
		return provisioning.NewService(
			provisioning.WithStorage(storage),
			provisioning.WithResolver(resolver),
		)
	})

	mustProvide(c, func(deps api.RoutesDeps) router.Router {
		r := router.CreateRouter()
		r.Use(router.MiddlewareFunc(diag.NewRequestIDMiddleware()))
		r.Use(router.MiddlewareFunc(diag.NewLogRequestsMiddleware()))
		r.Use(router.MiddlewareFunc(diag.NewRecoverMiddleware(nil)))
		api.SetupRoutes(r, deps)
		return r
	})

	return func(function interface{}) error {
		return c.Invoke(function)
	}
}
