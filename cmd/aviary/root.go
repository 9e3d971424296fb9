package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aviary-ml/aviary/pkg/log"
)

var cfgFile string

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "aviary",
		Short:         "Bird recording fetch and feature extraction pipeline",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(); err != nil {
				return err
			}
			log.SetupLogger(viper.GetString("log-level"))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./aviary.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("audio-dir", "data/audio", "directory for downloaded audio")
	rootCmd.PersistentFlags().String("feature-dir", "data/features", "root directory for feature artifacts")
	rootCmd.PersistentFlags().Int("workers", 0, "parallel workers, 0 means one per CPU")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(fmt.Sprintf("binding flags: %v", err))
	}

	rootCmd.AddCommand(newFetchCommand(), newExtractCommand())
	return rootCmd
}

// initConfig layers viper sources: defaults, then the config file when one
// exists, then AVIARY_* environment variables, then flags.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("aviary")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/aviary")
	}

	viper.SetEnvPrefix("aviary")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}
