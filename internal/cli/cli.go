/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package cli implements the es256ldp command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cfries/es256signature2020/internal/config"
)

var logger = log.New("es256signature2020/cli")

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand creates the es256ldp command tree. Each tree has its own viper instance.
func NewRootCommand() *cobra.Command {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:           "es256ldp",
		Short:         "Sign and verify JSON-LD documents with ES256 (EcdsaSecp256r1Signature2019) proofs",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.String(config.KeyConfigFile, "", "config file (default is ./es256ldp.yaml or $HOME/.es256ldp/es256ldp.yaml)")
	flags.String(config.KeyLogLevel, "info", "log level: critical, error, warning, info or debug")
	flags.StringArray(config.KeyStatic, []string{}, "static document in the format url=file. Can be used multiple times")
	flags.Bool(config.KeyRemote, false, "fetch unknown documents over HTTP")
	flags.StringArray(config.KeyContextProvider, []string{}, "endpoint serving JSON-LD contexts. Can be used multiple times")
	flags.Int(config.KeyCacheSize, 100, "number of resolved controller documents to cache")

	for _, key := range []string{
		config.KeyConfigFile, config.KeyLogLevel, config.KeyStatic, config.KeyRemote,
		config.KeyContextProvider, config.KeyCacheSize,
	} {
		_ = v.BindPFlag(key, flags.Lookup(key)) //nolint:errcheck
	}

	rootCmd.AddCommand(newKeygenCmd())
	rootCmd.AddCommand(newSignCmd(v))
	rootCmd.AddCommand(newVerifyCmd(v))

	return rootCmd
}

// loadConfig resolves settings and applies the log level.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}

	if err = cfg.ApplyLogLevel(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("input file is required")
	}

	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}

	return os.ReadFile(path) //nolint:gosec
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func writeJSONFile(path string, v interface{}) error {
	f, err := os.Create(path) //nolint:gosec
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logger.Warnf("close %s: %v", path, closeErr)
		}
	}()

	return writeJSON(f, v)
}
