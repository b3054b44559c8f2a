package config

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/evgeny-myasishchev/vault.banking/pkg/lib-core-golang/diag"
)

const appEnvVar = "APP_ENV"

var logger = diag.CreateLogger()

// AppEnv represents app env
type AppEnv struct {
	// ServiceName is a name of a current service
	ServiceName string

	// Name is a env name. By default taken from APP_ENV
	Name string
}

type appEnvCfg struct {
	lookupFlag func(name string) *flag.Flag
}

type appEnvOpt func(*appEnvCfg)

func withLookupFlag(lookupFlag func(name string) *flag.Flag) appEnvOpt {
	return func(cfg *appEnvCfg) {
		cfg.lookupFlag = lookupFlag
	}
}

// NewAppEnv creates a new instance of the app env from os env.
// Will use "test" when running tests and "dev" otherwise
func NewAppEnv(serviceName string, opts ...appEnvOpt) AppEnv {
	cfg := appEnvCfg{
		lookupFlag: flag.Lookup,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	appEnv := os.Getenv(appEnvVar)
	if appEnv == "" {
		if v := cfg.lookupFlag("test.v"); v == nil {
			appEnv = "dev"
		} else {
			appEnv = "test"
		}
	}
	return AppEnv{
		Name:        appEnv,
		ServiceName: serviceName,
	}
}

// Source is an abstraction to read params
type Source interface {
	GetParameters(ctx context.Context, params []param) (map[param]interface{}, error)
}

// SourceFactory is a func that creates an instance of a source
type SourceFactory func() (Source, error)

type sourceBinding struct {
	params []param
	source Source
}

// ServiceConfig gives access to loaded values
type ServiceConfig interface {
	StringParam(p StringParam) StringVal
	IntParam(p IntParam) IntVal
	BoolParam(p BoolParam) BoolVal
}

type serviceConfig struct {
	sources []sourceBinding
	values  map[param]paramValue
}

func (c *serviceConfig) value(p param) paramValue {
	val, ok := c.values[p]
	if !ok {
		panic(fmt.Sprintf("Unknown parameter: %v", p))
	}
	return val
}

func (c *serviceConfig) StringParam(p StringParam) StringVal {
	return c.value(p).(StringVal)
}

func (c *serviceConfig) IntParam(p IntParam) IntVal {
	return c.value(p).(IntVal)
}

func (c *serviceConfig) BoolParam(p BoolParam) BoolVal {
	return c.value(p).(BoolVal)
}

// ServiceConfigOpt is an option of the service config
type ServiceConfigOpt func(cfg *serviceConfig)

// WithSource binds params to a source
func WithSource(binding sourceBinding) ServiceConfigOpt {
	return func(cfg *serviceConfig) {
		cfg.sources = append(cfg.sources, binding)
	}
}

func newServiceConfig(opts ...ServiceConfigOpt) *serviceConfig {
	cfg := &serviceConfig{values: map[param]paramValue{}}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func loadInitialValues(ctx context.Context, cfg *serviceConfig) error {
	for _, binding := range cfg.sources {
		values, err := binding.source.GetParameters(ctx, binding.params)
		if err != nil {
			return err
		}
		logger.Debug(ctx, "Fetched %v (of %v requested) values", len(values), len(binding.params))
		for _, p := range binding.params {
			rawValue, ok := values[p]
			if !ok {
				return errors.Errorf("Parameter %v not found", p)
			}
			value := p.emptyValue()
			if err := value.setValue(rawValue); err != nil {
				return errors.Wrapf(err, "Failed to set value for parameter %v", p)
			}
			cfg.values[p] = value
		}
	}
	return nil
}

// Load will load values of all params from bound sources
func Load(ctx context.Context, opts ...ServiceConfigOpt) (ServiceConfig, error) {
	cfg := newServiceConfig(opts...)
	if err := loadInitialValues(ctx, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
