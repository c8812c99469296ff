//
// party.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"time"

	"github.com/markkurossi/tinier/p2p"
	"github.com/markkurossi/tinier/party"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var partyCmd = &cobra.Command{
	Use:   "party",
	Short: "Run one party of a TCP mesh",
	Long: `Run one party of a TCP mesh. The peers flag lists the addresses of
all parties in party ID order. Each party listens at its own address
and dials the parties with larger IDs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		return runParty(cfg, viper.GetInt("id"),
			viper.GetStringSlice("peers"), viper.GetDuration("timeout"))
	},
}

func init() {
	flags := partyCmd.Flags()
	flags.Int("id", 0, "party ID")
	flags.StringSlice("peers", nil, "party addresses in ID order")
	flags.Duration("timeout", time.Minute, "connection timeout")

	for _, name := range []string{"id", "peers", "timeout"} {
		handleBindingError(viper.BindPFlag(name, flags.Lookup(name)), name)
	}
}

func runParty(cfg *config, id int, peers []string,
	timeout time.Duration) error {

	if len(peers) != cfg.Players {
		return fmt.Errorf("got %v peer addresses for %v players",
			len(peers), cfg.Players)
	}
	if id < 0 || id >= cfg.Players {
		return fmt.Errorf("invalid party ID %v: expected [0...%v[",
			id, cfg.Players)
	}
	log, err := newLogger(cfg.Verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	nw, err := p2p.NewNetwork(peers[id], id, log)
	if err != nil {
		return err
	}
	defer nw.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for peer := id + 1; peer < cfg.Players; peer++ {
		if err := nw.AddPeer(ctx, peers[peer], peer); err != nil {
			return err
		}
	}
	conns, err := nw.Wait(ctx, cfg.Players)
	if err != nil {
		return err
	}
	g, err := party.NewGroup(id, conns, log)
	if err != nil {
		return err
	}
	thread, err := party.NewThread(g, rand.Reader)
	if err != nil {
		return err
	}
	r, err := run(cfg, thread, g.Log)
	if err != nil {
		return err
	}
	r.print(os.Stdout, g)
	r.usage.Print(os.Stdout)

	return nil
}
