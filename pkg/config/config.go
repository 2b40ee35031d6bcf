package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const defaultEnvFile = ".env"

var (
	envFilePath string
	parseOnce   sync.Once
	exportMu    sync.Mutex
)

func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(err)
	}
	return conf
}

// New fills T from the environment under prefix. A .env file given with -env,
// or ./.env when present, is exported into the environment first.
func New[T any](prefix string) (*T, error) {
	if err := loadEnvFile(resolveEnvPath()); err != nil {
		return nil, err
	}
	return Process[T](prefix)
}

// Process fills T from the current environment only.
func Process[T any](prefix string) (*T, error) {
	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, fmt.Errorf("process %s config: %w", displayPrefix(prefix), err)
	}
	return &conf, nil
}

func loadEnvFile(path string) error {
	if path != "" {
		if err := exportEnvironment(path); err != nil {
			return fmt.Errorf("failed to load env file: %w", err)
		}
		return nil
	}
	if err := exportEnvironmentIfExists(defaultEnvFile); err != nil {
		return fmt.Errorf("failed to load default env file: %w", err)
	}
	return nil
}

func resolveEnvPath() string {
	parseOnce.Do(func() {
		if flag.Lookup("env") == nil {
			flag.StringVar(&envFilePath, "env", "", "path to .env file")
		}
		if !flag.Parsed() {
			flag.Parse()
		}
	})
	return strings.TrimSpace(envFilePath)
}

func exportEnvironmentIfExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(path)
}

// exportEnvironment copies every key of the file into the process env. Keys
// already set in the environment win over the file.
func exportEnvironment(path string) error {
	exportMu.Lock()
	defer exportMu.Unlock()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for k, val := range v.AllSettings() {
		key := strings.ToUpper(k)
		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return err
		}
	}

	return nil
}

func displayPrefix(prefix string) string {
	if strings.TrimSpace(prefix) == "" {
		return "app"
	}
	return strings.ToLower(prefix)
}
