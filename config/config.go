package config

import (
	"context"

	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/config"
	"github.com/evgeny-myasishchev/vault.banking/pkg/version"
)

var appEnv = config.NewAppEnv(version.AppName)
var configBuilder = config.NewBuilder(appEnv)

var localParams = configBuilder.NewParamsBuilder(configBuilder.WithLocalSource())

// Do not change vars below at runtime
var (
	LogLevel = localParams.NewParam("log/level").String()
	LogMode  = localParams.NewParam("log/mode").String()

	ServerPort = localParams.NewParam("server/port").Int()

	StorageDriver = localParams.NewParam("storage/driver").String()
	StorageDSN    = localParams.NewParam("storage/data-source-name").String()

	SessionsDriver     = localParams.NewParam("sessions/driver").String()
	SessionsRedisAddr  = localParams.NewParam("sessions/redis-addr").String()
	SessionsTTLMinutes = localParams.NewParam("sessions/ttl-minutes").Int()

	FeesDomesticCountry = localParams.NewParam("fees/domestic-country").String()

	SeedEnabled      = localParams.NewParam("seed/enabled").Bool()
	SeedFixturesFile = localParams.NewParam("seed/fixtures-file").String()

	APIBaseURL = localParams.NewParam("api/base-url").String()
)

// Log represents logger specific options
type Log struct {
	Level config.StringVal
	Mode  config.StringVal
}

// Server represents http server settings
type Server struct {
	Port config.IntVal
}

// Storage represents storage settings
type Storage struct {
	Driver config.StringVal
	DSN    config.StringVal
}

// Sessions represents session store settings
type Sessions struct {
	Driver     config.StringVal
	RedisAddr  config.StringVal
	TTLMinutes config.IntVal
}

// Fees represents fee policy settings
type Fees struct {
	DomesticCountry config.StringVal
}

// Seed represents demo data settings
type Seed struct {
	Enabled      config.BoolVal
	FixturesFile config.StringVal
}

// API represents settings of the api client
type API struct {
	BaseURL config.StringVal
}

// AppConfig is a toplevel config structure
type AppConfig struct {
	Env      string
	Log      Log
	Server   Server
	Storage  Storage
	Sessions Sessions
	Fees     Fees
	Seed     Seed
	API      API
}

// LoadAppConfig will load and initialize app config structure
func LoadAppConfig(ctx context.Context) (*AppConfig, error) {
	cfg, err := configBuilder.LoadConfig(ctx)
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		Env: appEnv.Name,
		Log: Log{
			Level: cfg.StringParam(LogLevel),
			Mode:  cfg.StringParam(LogMode),
		},
		Server: Server{
			Port: cfg.IntParam(ServerPort),
		},
		Storage: Storage{
			Driver: cfg.StringParam(StorageDriver),
			DSN:    cfg.StringParam(StorageDSN),
		},
		Sessions: Sessions{
			Driver:     cfg.StringParam(SessionsDriver),
			RedisAddr:  cfg.StringParam(SessionsRedisAddr),
			TTLMinutes: cfg.IntParam(SessionsTTLMinutes),
		},
		Fees: Fees{
			DomesticCountry: cfg.StringParam(FeesDomesticCountry),
		},
		Seed: Seed{
			Enabled:      cfg.BoolParam(SeedEnabled),
			FixturesFile: cfg.StringParam(SeedFixturesFile),
		},
		API: API{
			BaseURL: cfg.StringParam(APIBaseURL),
		},
	}, nil
}
