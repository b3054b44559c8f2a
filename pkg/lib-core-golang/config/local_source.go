package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// DirVar points the local source at a different config dir
const DirVar = "APP_CONFIG_DIR"

const (
	defaultConfigFile = "default.json"
	envOverridesFile  = "custom-environment-variables.json"
)

type localSource struct {
	dir          string
	configFiles  []string
	envOverrides map[string]interface{}
}

func pick(obj interface{}, path string) interface{} {
	value := obj
	for _, part := range strings.Split(path, "/") {
		node, ok := value.(map[string]interface{})
		if !ok {
			return nil
		}
		if value, ok = node[part]; !ok {
			return nil
		}
	}
	return value
}

func (s *localSource) GetParameters(ctx context.Context, params []param) (map[param]interface{}, error) {
	values := map[param]interface{}{}

	for _, configFile := range s.configFiles {
		buffer, err := os.ReadFile(filepath.Join(s.dir, configFile))
		if err != nil {
			if configFile != defaultConfigFile && os.IsNotExist(err) {
				logger.Debug(ctx, "Config file %v not found", configFile)
				continue
			}
			return nil, errors.Wrapf(err, "Failed to read %v", configFile)
		}
		var configData map[string]interface{}
		if err := json.Unmarshal(buffer, &configData); err != nil {
			return nil, errors.Wrapf(err, "Failed to parse %v", configFile)
		}

		for _, p := range params {
			if value := pick(configData, p.key()); value != nil {
				values[p] = value
			}
		}
	}

	for _, p := range params {
		envName, ok := pick(s.envOverrides, p.key()).(string)
		if !ok {
			continue
		}
		if envVal := os.Getenv(envName); envVal != "" {
			values[p] = envVal
		}
	}

	return values, nil
}

// LocalOpt is an option of a local config source
type LocalOpt func(s *localSource)

// LocalOpts are options of a local source
var LocalOpts = struct {
	// WithDir option to set local dir to load config from
	WithDir func(dir string) LocalOpt

	// WithAppEnv option will add env specific config file
	WithAppEnv func(appEnv AppEnv) LocalOpt
}{
	WithDir: func(dir string) LocalOpt {
		return func(s *localSource) {
			s.dir = dir
		}
	},
	WithAppEnv: func(appEnv AppEnv) LocalOpt {
		return func(s *localSource) {
			s.configFiles = append(s.configFiles, appEnv.Name+".json")
		}
	},
}

func defaultConfigDir() string {
	if dir := os.Getenv(DirVar); dir != "" {
		return dir
	}
	if _, file, _, ok := runtime.Caller(0); ok {
		return filepath.Join(file, "..", "..", "..", "..", "config")
	}
	return "config"
}

// NewLocalSource creates a source that reads params from json files of a config dir.
// Files are applied in order: default.json, <env>.json. Values can be overridden
// with env variables mapped in custom-environment-variables.json
func NewLocalSource(opts ...LocalOpt) (Source, error) {
	source := &localSource{
		dir:         defaultConfigDir(),
		configFiles: []string{defaultConfigFile},
	}
	for _, opt := range opts {
		opt(source)
	}

	overridesBuffer, err := os.ReadFile(filepath.Join(source.dir, envOverridesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return source, nil
		}
		return nil, errors.Wrapf(err, "Failed to read %v", envOverridesFile)
	}
	if err := json.Unmarshal(overridesBuffer, &source.envOverrides); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse %v", envOverridesFile)
	}
	return source, nil
}
