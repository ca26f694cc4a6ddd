/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package config loads es256ldp settings from flags, ES256LDP_* environment variables and es256ldp.yaml.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/piprate/json-gold/ld"
	"github.com/spf13/viper"
	"github.com/trustbloc/did-go/doc/ld/context/remote"

	"github.com/cfries/es256signature2020/ld/documentloader"
	"github.com/cfries/es256signature2020/vermethod"
)

const (
	// EnvPrefix prefixes environment variables, e.g. ES256LDP_LOG_LEVEL.
	EnvPrefix = "ES256LDP"

	// KeyConfigFile is the explicit config file path.
	KeyConfigFile = "config"
	// KeyLogLevel is the log level for all modules.
	KeyLogLevel = "log-level"
	// KeyStatic lists static documents as url=file.
	KeyStatic = "static"
	// KeyRemote enables fetching unknown documents over HTTP.
	KeyRemote = "remote"
	// KeyRemoteTimeout bounds remote document fetches.
	KeyRemoteTimeout = "remote-timeout"
	// KeyContextProvider lists endpoints serving JSON-LD contexts to import at startup.
	KeyContextProvider = "context-provider"
	// KeyCacheSize is the number of resolved controller documents to keep.
	KeyCacheSize = "cache-size"

	configName = "es256ldp"
)

var logger = log.New("es256signature2020/config")

// nolint: gochecknoglobals
var defaults = map[string]interface{}{
	KeyLogLevel:      "info",
	KeyRemote:        false,
	KeyRemoteTimeout: 10 * time.Second,
	KeyCacheSize:     100,
}

// Config holds the resolved settings.
type Config struct {
	LogLevel      string
	Static        []string
	Remote        bool
	RemoteTimeout time.Duration
	Providers     []string
	CacheSize     int
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()

	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the config file (if any) and returns the resolved settings.
func Load(v *viper.Viper) (*Config, error) {
	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigType("yaml")
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.es256ldp")
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		logger.Debugf("no config file found")
	}

	return &Config{
		LogLevel:      v.GetString(KeyLogLevel),
		Static:        v.GetStringSlice(KeyStatic),
		Remote:        v.GetBool(KeyRemote),
		RemoteTimeout: v.GetDuration(KeyRemoteTimeout),
		Providers:     v.GetStringSlice(KeyContextProvider),
		CacheSize:     v.GetInt(KeyCacheSize),
	}, nil
}

// ApplyLogLevel sets the log level of all modules.
func (c *Config) ApplyLogLevel() error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}

	log.SetLevel("", level)

	return nil
}

// DocumentLoader builds a document loader with the configured static documents and context providers.
func (c *Config) DocumentLoader() (*documentloader.DocumentLoader, error) {
	var opts []documentloader.Opts

	client := &http.Client{Timeout: c.RemoteTimeout}

	if c.Remote {
		opts = append(opts, documentloader.WithRemoteDocumentLoader(ld.NewDefaultDocumentLoader(client)))
	}

	for _, endpoint := range c.Providers {
		opts = append(opts, documentloader.WithRemoteProvider(remote.NewProvider(endpoint, remote.WithHTTPClient(client))))
	}

	loader, err := documentloader.New(opts...)
	if err != nil {
		return nil, err
	}

	for _, entry := range c.Static {
		u, file, ok := strings.Cut(entry, "=")
		if !ok || u == "" || file == "" {
			return nil, fmt.Errorf("static document %q: expected url=file", entry)
		}

		content, err := os.ReadFile(file) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("static document %s: %w", u, err)
		}

		if err = loader.AddDocument(u, content); err != nil {
			return nil, err
		}
	}

	return loader, nil
}

// Resolver builds a verification method resolver over loader.
func (c *Config) Resolver(loader ld.DocumentLoader) (*vermethod.Resolver, error) {
	return vermethod.NewResolver(loader, vermethod.WithCacheSize(c.CacheSize))
}
