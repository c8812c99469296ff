//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package triplegen

import (
	"fmt"

	"github.com/markkurossi/text/superscript"
	"github.com/markkurossi/tinier/ot"
	"github.com/markkurossi/tinier/party"
	"github.com/markkurossi/tinier/share"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// The number of MITCCRH keys hashed in one call.
	hashWidth = 8

	// The number of MITCCRH keys created in one key renewal.
	hashBatch = 8 * hashWidth
)

// peer holds the correlated OT instances with one peer. The sender
// uses this party's key share as its correlation and the receiver
// the peer's key share.
type peer struct {
	sender   *ot.IKNPSender
	receiver *ot.IKNPReceiver
	sendHash *ot.MITCCRH
	recvHash *ot.MITCCRH
}

// Generator implements the OT-based generator of authenticated
// triples and input shares. All parties of the group must call the
// generator functions in the same order.
type Generator struct {
	group          *party.Group
	nplayers       int
	batchSize      int
	nthreads       int
	params         Params
	key            share.KeyShare
	setup          *OTSetup
	rand           *share.BitSource
	peers          []*peer
	mc             *party.MACCheck
	singleThreaded bool
	sent           uint64
	log            *zap.SugaredLogger
}

// NewGenerator creates a new generator. The nplayers must be -1 or
// the number of parties in the group. The function runs the base OTs
// with all peers and returns when the correlated OT instances are
// ready.
func NewGenerator(setup *OTSetup, g *party.Group, nplayers, batchSize,
	nthreads int, params Params, key share.KeyShare) (*Generator, error) {

	if nplayers < 0 {
		nplayers = g.NumPlayers()
	}
	if nplayers != g.NumPlayers() {
		return nil, fmt.Errorf("invalid number of players %v, group has %v",
			nplayers, g.NumPlayers())
	}
	if batchSize <= 0 {
		return nil, fmt.Errorf("invalid batch size %v", batchSize)
	}
	if nthreads < 1 {
		nthreads = 1
	}
	rand, err := share.NewBitSource(setup.Rand)
	if err != nil {
		return nil, err
	}
	gen := &Generator{
		group:     g,
		nplayers:  nplayers,
		batchSize: batchSize,
		nthreads:  nthreads,
		params:    params,
		key:       key,
		setup:     setup,
		rand:      rand,
		peers:     make([]*peer, nplayers),
		mc:        party.NewMACCheck(key, g, setup.Rand),
		log:       g.Log,
	}
	defer gen.account(gen.stats())

	for _, id := range g.Peers() {
		gen.peers[id] = new(peer)
	}
	err = gen.pairwise(g.Peers(), gen.setupSender, gen.setupReceiver)
	if err != nil {
		return nil, fmt.Errorf("OT setup: %w", err)
	}
	gen.log.Debugf("generator ready: players=%v, batch=%v, %v",
		nplayers, batchSize, params)

	return gen, nil
}

// SetSingleThreaded sets the generator's threading mode. In the
// single-threaded mode, the generator runs all local computation on
// the calling goroutine.
func (gen *Generator) SetSingleThreaded(single bool) {
	gen.singleThreaded = single
}

// BatchSize returns the number of values generated in one call.
func (gen *Generator) BatchSize() int {
	return gen.batchSize
}

// BytesSent returns the number of bytes this generator has sent to
// its peers.
func (gen *Generator) BytesSent() uint64 {
	return gen.sent
}

// Close releases the generator's OT instances. The group connections
// are not closed.
func (gen *Generator) Close() error {
	gen.peers = nil
	return nil
}

func (gen *Generator) stats() uint64 {
	return gen.group.Stats().Sent.Load()
}

func (gen *Generator) account(start uint64) {
	gen.sent += gen.stats() - start
}

func (gen *Generator) checkOpen() error {
	if gen.peers == nil {
		return fmt.Errorf("generator closed")
	}
	return nil
}

// pairwise runs the send and receive functions with each peer in
// ascending peer order. With each peer, the party with the smaller ID
// runs its send function first.
func (gen *Generator) pairwise(peers []int, send, receive func(id int) error) error {
	for _, id := range peers {
		var err error
		if gen.group.ID < id {
			err = send(id)
			if err == nil {
				err = receive(id)
			}
		} else {
			err = receive(id)
			if err == nil {
				err = send(id)
			}
		}
		if err != nil {
			return fmt.Errorf("peer %s: %w", superscript.Itoa(id), err)
		}
	}
	return nil
}

func (gen *Generator) setupSender(id int) error {
	conn := gen.group.Conns[id]

	base := gen.setup.NewOT()
	if err := base.InitReceiver(conn); err != nil {
		return err
	}
	sender, err := ot.NewIKNPSender(base, conn, gen.rand, &gen.key.Delta)
	if err != nil {
		return err
	}
	seed, err := ot.NewLabel(gen.rand)
	if err != nil {
		return err
	}
	var ld ot.LabelData
	if err := conn.SendLabel(seed, &ld); err != nil {
		return err
	}
	if err := conn.Flush(); err != nil {
		return err
	}
	gen.peers[id].sender = sender
	gen.peers[id].sendHash = ot.NewMITCCRH(seed, hashBatch)

	return nil
}

func (gen *Generator) setupReceiver(id int) error {
	conn := gen.group.Conns[id]

	base := gen.setup.NewOT()
	if err := base.InitSender(conn); err != nil {
		return err
	}
	receiver, err := ot.NewIKNPReceiver(base, conn, gen.rand)
	if err != nil {
		return err
	}
	var seed ot.Label
	var ld ot.LabelData
	if err := conn.ReceiveLabel(&seed, &ld); err != nil {
		return err
	}
	gen.peers[id].receiver = receiver
	gen.peers[id].recvHash = ot.NewMITCCRH(seed, hashBatch)

	return nil
}

// parallel runs fn over the index range [0, n[. If the generator is
// not single-threaded, the range is split between nthreads
// goroutines.
func (gen *Generator) parallel(n int, fn func(lo, hi int)) {
	if gen.singleThreaded || gen.nthreads == 1 || n < gen.nthreads {
		fn(0, n)
		return
	}
	var eg errgroup.Group
	eg.SetLimit(gen.nthreads)

	step := (n + gen.nthreads - 1) / gen.nthreads
	for lo := 0; lo < n; lo += step {
		hi := min(lo+step, n)
		eg.Go(func() error {
			fn(lo, hi)
			return nil
		})
	}
	eg.Wait()
}
