//
// local.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/markkurossi/tinier/p2p"
	"github.com/markkurossi/tinier/party"
	"github.com/markkurossi/tinier/prep"
	"github.com/markkurossi/tinier/share"
	"github.com/markkurossi/tinier/timing"
	"github.com/markkurossi/tinier/triplegen"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var localCmd = &cobra.Command{
	Use:   "local",
	Short: "Run all parties in-process",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		return runLocal(cfg, viper.GetBool("dealer"))
	},
}

func init() {
	localCmd.Flags().Bool("dealer", false, "use trusted dealer generators")
	handleBindingError(viper.BindPFlag("dealer",
		localCmd.Flags().Lookup("dealer")), "dealer")
}

func runLocal(cfg *config, dealer bool) error {
	log, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	mesh := p2p.Mesh(cfg.Players)
	threads := make([]*party.Thread, cfg.Players)
	keys := make([]share.KeyShare, cfg.Players)
	for i := range threads {
		g, err := party.NewGroup(i, mesh[i], log)
		if err != nil {
			return err
		}
		defer g.Close()
		threads[i], err = party.NewThread(g, rand.Reader)
		if err != nil {
			return err
		}
		keys[i] = threads[i].MC.KeyShare()
	}

	var opts []prep.Option
	if dealer {
		d, err := triplegen.NewDealer(keys, cfg.BatchSize, 0, rand.Reader)
		if err != nil {
			return err
		}
		opts = append(opts, prep.WithGeneratorFactory(prep.DealerFactory(d)))
	}

	reports := make([]*report, cfg.Players)
	var eg errgroup.Group
	for i, thread := range threads {
		eg.Go(func() error {
			r, err := run(cfg, thread, thread.P.Log, opts...)
			if err != nil {
				return fmt.Errorf("party %d: %w", i, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	total := prep.NewUsage(cfg.Players)
	var sent uint64
	for _, r := range reports {
		total.Add(r.usage)
		sent += r.dataSent
	}
	reports[0].print(os.Stdout, threads[0].P)
	fmt.Printf("Usage of %d parties:\n", cfg.Players)
	total.Print(os.Stdout)
	fmt.Printf("Generators sent %s\n", timing.FileSize(sent))

	return nil
}
