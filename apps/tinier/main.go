//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Tinier runs the preprocessing of authenticated triples, bits, and
// inputs for N parties, either in-process or as one party of a TCP
// mesh.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tinier",
	Short: "Preprocessing of authenticated Boolean triples",
	Long: `Tinier generates authenticated multiplication triples, random bits,
and input shares for the Boolean online phase of a multi-party
computation.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tinier: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.IntP("players", "n", 2, "number of parties")
	flags.IntP("batch", "b", 1000, "generator batch size")
	flags.String("mode", "secret", "trust mode: secret or personal")
	flags.Int("owner", 0, "owner of personal triples")
	flags.Int("triples", 10000, "number of triples to consume")
	flags.Int("bits", 1000, "number of bits to consume")
	flags.Int("inputs", 1000, "number of inputs to consume per player")

	for _, name := range []string{
		"verbose", "players", "batch", "mode", "owner", "triples", "bits",
		"inputs",
	} {
		handleBindingError(viper.BindPFlag(name, flags.Lookup(name)), name)
	}

	rootCmd.AddCommand(localCmd, partyCmd, otCmd)
}

func handleBindingError(err error, flag string) {
	if err != nil {
		panic(fmt.Sprintf("error binding flag %q: %v", flag, err))
	}
}

// initConfig reads in the config file and the environment variables.
func initConfig() {
	viper.SetEnvPrefix("tinier")
	viper.AutomaticEnv()

	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "tinier: %s: %s\n", cfgFile, err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	var log *zap.Logger
	var err error
	if verbose {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}
