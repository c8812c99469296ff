//
// ot.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"time"

	"github.com/markkurossi/tinier/ot"
	"github.com/markkurossi/tinier/p2p"
	"github.com/markkurossi/tinier/timing"
	"github.com/spf13/cobra"
)

var otCmd = &cobra.Command{
	Use:   "ot",
	Short: "Benchmark the correlated OT extension",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := cmd.Flags().GetInt("count")
		if err != nil {
			return err
		}
		check, err := cmd.Flags().GetBool("check")
		if err != nil {
			return err
		}
		return benchmarkOT(count, check)
	},
}

func init() {
	otCmd.Flags().Int("count", 1000000, "number of correlated OTs")
	otCmd.Flags().Bool("check", false, "enable consistency check")
}

func benchmarkOT(count int, check bool) error {
	sc, rc := p2p.Pipe()
	defer sc.Close()
	defer rc.Close()

	delta, err := ot.NewLabel(rand.Reader)
	if err != nil {
		return err
	}
	flags := make([]bool, count)
	for i := range flags {
		l, err := ot.NewLabel(rand.Reader)
		if err != nil {
			return err
		}
		flags[i] = l.LSB()
	}

	tm := timing.NewTiming()

	done := make(chan error)
	var q []ot.Label
	var sendTime time.Duration
	go func() {
		base := ot.NewCO(rand.Reader)
		if err := base.InitReceiver(sc); err != nil {
			done <- err
			return
		}
		sender, err := ot.NewIKNPSender(base, sc, rand.Reader, &delta)
		if err != nil {
			done <- err
			return
		}
		start := time.Now()
		q, err = sender.Send(count, check)
		sendTime = time.Since(start)
		done <- err
	}()

	base := ot.NewCO(rand.Reader)
	if err := base.InitSender(rc); err != nil {
		return err
	}
	receiver, err := ot.NewIKNPReceiver(base, rc, rand.Reader)
	if err != nil {
		return err
	}
	tm.Sample("Base OT", nil)

	t := make([]ot.Label, count)
	if err := receiver.Receive(flags, t, check); err != nil {
		return err
	}
	received := time.Now()
	if err := <-done; err != nil {
		return err
	}
	sample := tm.Sample("Extend", nil)
	sample.SubSample("Receive", received)
	sample.AbsSubSample("Send", sendTime)

	for i := range t {
		expected := q[i]
		expected.Xor(delta.Select(flags[i]))
		if !expected.Equal(t[i]) {
			return fmt.Errorf("correlation %d failed", i)
		}
	}
	tm.Sample("Verify", nil)

	elapsed := sample.End.Sub(sample.Start)
	fmt.Printf("%d correlated OTs in %s: %.0f OT/s\n", count, elapsed,
		float64(count)/elapsed.Seconds())
	tm.Print(os.Stdout, rc.Stats.Add(sc.Stats))

	return nil
}
