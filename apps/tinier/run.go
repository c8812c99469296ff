//
// run.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/tinier/party"
	"github.com/markkurossi/tinier/prep"
	"github.com/markkurossi/tinier/timing"
	"go.uber.org/zap"
)

// report holds the results of one party's run.
type report struct {
	id        int
	timing    *timing.Timing
	usage     *prep.Usage
	dataSent  uint64
	labels    []string
	latencies []timing.Latency
}

// run binds the party's preprocessing and drains the configured
// number of values from it.
func run(cfg *config, thread *party.Thread, log *zap.SugaredLogger,
	opts ...prep.Option) (*report, error) {

	opts = append(opts,
		prep.WithOptions(prep.Options{BatchSize: cfg.BatchSize}),
		prep.WithLogger(log))

	r := &report{
		id:     thread.P.ID,
		timing: timing.NewTiming(),
		usage:  prep.NewUsage(cfg.Players),
	}
	p := prep.New(r.usage, thread, cfg.Mode, opts...)
	defer p.Close()

	if err := p.Bind(thread); err != nil {
		return nil, err
	}
	r.timing.Sample("Bind", []string{timing.FileSize(p.DataSent()).String()})

	measure := func(label string, count int, fn func() error) error {
		sent := p.DataSent()
		durations := make([]time.Duration, 0, count)
		for i := 0; i < count; i++ {
			start := time.Now()
			if err := fn(); err != nil {
				return fmt.Errorf("%s: %w", label, err)
			}
			durations = append(durations, time.Since(start))
		}
		r.timing.Sample(label, []string{
			timing.FileSize(p.DataSent() - sent).String(),
		})
		if count == 0 {
			return nil
		}
		l, err := timing.Summarize(durations)
		if err != nil {
			return err
		}
		r.labels = append(r.labels, label)
		r.latencies = append(r.latencies, l)
		return nil
	}

	err := measure("Triples", cfg.Triples, func() error {
		_, err := p.Triple()
		return err
	})
	if err != nil {
		return nil, err
	}
	err = measure("Bits", cfg.Bits, func() error {
		_, err := p.Bit()
		return err
	})
	if err != nil {
		return nil, err
	}
	for player := 0; player < cfg.Players; player++ {
		err = measure(fmt.Sprintf("Inputs P%d", player), cfg.Inputs,
			func() error {
				_, err := p.Input(player)
				return err
			})
		if err != nil {
			return nil, err
		}
	}
	r.dataSent = p.DataSent()
	log.Infof("preprocessing done: sent=%v", timing.FileSize(r.dataSent))

	return r, nil
}

// print prints the party's report to w.
func (r *report) print(w io.Writer, g *party.Group) {
	fmt.Fprintf(w, "Party %d:\n", r.id)
	r.timing.Print(w, g.Stats())
	if len(r.latencies) > 0 {
		timing.PrintLatencies(w, r.labels, r.latencies)
	}
}
