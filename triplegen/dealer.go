//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package triplegen

import (
	"fmt"
	"io"
	"sync"

	"github.com/markkurossi/tinier/ot"
	"github.com/markkurossi/tinier/party"
	"github.com/markkurossi/tinier/share"
)

// Dealer implements a trusted dealer generating the shares of all
// parties of an in-process computation. The k:th generator each party
// creates from the dealer shares its values with the k:th generator
// of the other parties.
type Dealer struct {
	m         sync.Mutex
	keys      []share.KeyShare
	delta     ot.Label
	batchSize int
	cost      uint64
	rand      *share.BitSource
	created   []int
	streams   []*stream
}

type stream struct {
	triples [][]share.Triple
	inputs  [][][]share.Input
}

// NewDealer creates a new dealer for the key shares. Each generator
// call accounts cost bytes sent.
func NewDealer(keys []share.KeyShare, batchSize int, cost uint64,
	rand io.Reader) (*Dealer, error) {

	if batchSize <= 0 {
		return nil, fmt.Errorf("invalid batch size %v", batchSize)
	}
	src, err := share.NewBitSource(rand)
	if err != nil {
		return nil, err
	}
	return &Dealer{
		keys:      keys,
		delta:     share.GlobalKey(keys),
		batchSize: batchSize,
		cost:      cost,
		rand:      src,
		created:   make([]int, len(keys)),
	}, nil
}

// NewGenerator creates the next generator for the group's party. The
// arguments match NewGenerator; the setup and the thread count are
// ignored and the dealer's batch size overrides the batch size
// argument.
func (d *Dealer) NewGenerator(setup *OTSetup, g *party.Group, nplayers,
	batchSize, nthreads int, params Params, key share.KeyShare) (
	*DealerGenerator, error) {

	d.m.Lock()
	defer d.m.Unlock()

	if nplayers >= 0 && nplayers != len(d.keys) {
		return nil, fmt.Errorf("invalid number of players %v, dealer has %v",
			nplayers, len(d.keys))
	}
	if g.NumPlayers() != len(d.keys) {
		return nil, fmt.Errorf("group has %v players, dealer has %v",
			g.NumPlayers(), len(d.keys))
	}
	if key != d.keys[g.ID] {
		return nil, fmt.Errorf("key share mismatch for party %v", g.ID)
	}
	idx := d.created[g.ID]
	d.created[g.ID]++
	for len(d.streams) <= idx {
		n := len(d.keys)
		s := &stream{
			triples: make([][]share.Triple, n),
			inputs:  make([][][]share.Input, n),
		}
		for i := range s.inputs {
			s.inputs[i] = make([][]share.Input, n)
		}
		d.streams = append(d.streams, s)
	}
	return &DealerGenerator{
		dealer: d,
		stream: d.streams[idx],
		id:     g.ID,
		params: params,
	}, nil
}

// split creates random shares of x.
func (d *Dealer) split(x bool) []share.Bit {
	result := make([]share.Bit, len(d.keys))
	v := x
	mac := d.delta.Select(x)
	for i := 1; i < len(result); i++ {
		result[i].V = d.rand.Bit()
		result[i].MAC, _ = ot.NewLabel(d.rand)
		v = v != result[i].V
		mac.Xor(result[i].MAC)
	}
	result[0].V = v
	result[0].MAC = mac
	return result
}

// splitInput creates the shares of x owned by the party owner.
func (d *Dealer) splitInput(x bool, owner int) []share.Input {
	result := make([]share.Input, len(d.keys))
	mac := d.delta.Select(x)
	for i := range result {
		if i == owner {
			continue
		}
		result[i].MAC, _ = ot.NewLabel(d.rand)
		mac.Xor(result[i].MAC)
	}
	result[owner].V = x
	result[owner].MAC = mac
	result[owner].Clear = x
	return result
}

func (d *Dealer) dealTriples(s *stream) {
	for k := 0; k < d.batchSize; k++ {
		a := d.rand.Bit()
		b := d.rand.Bit()
		as := d.split(a)
		bs := d.split(b)
		cs := d.split(a && b)
		for i := range s.triples {
			s.triples[i] = append(s.triples[i], share.Triple{
				A: as[i],
				B: bs[i],
				C: cs[i],
			})
		}
	}
}

func (d *Dealer) dealInputs(s *stream, owner int) {
	for k := 0; k < d.batchSize; k++ {
		shares := d.splitInput(d.rand.Bit(), owner)
		for i := range shares {
			s.inputs[owner][i] = append(s.inputs[owner][i], shares[i])
		}
	}
}

// DealerGenerator implements one party's generator of the dealer.
type DealerGenerator struct {
	dealer      *Dealer
	stream      *stream
	id          int
	params      Params
	sent        uint64
	closed      bool
	TripleCalls int
	InputCalls  int
}

// SetSingleThreaded implements the generator's threading mode. The
// dealer generator is always single-threaded.
func (g *DealerGenerator) SetSingleThreaded(single bool) {
}

// BytesSent returns the fixed per-call cost times the number of
// calls.
func (g *DealerGenerator) BytesSent() uint64 {
	return g.sent
}

// Close closes the generator.
func (g *DealerGenerator) Close() error {
	g.closed = true
	return nil
}

// GenerateTriples returns the party's shares of the next batch of
// triples.
func (g *DealerGenerator) GenerateTriples() ([]share.Triple, error) {
	if g.closed {
		return nil, fmt.Errorf("generator closed")
	}
	d := g.dealer
	d.m.Lock()
	defer d.m.Unlock()

	if len(g.stream.triples[g.id]) == 0 {
		d.dealTriples(g.stream)
	}
	result := g.stream.triples[g.id][:d.batchSize:d.batchSize]
	g.stream.triples[g.id] = g.stream.triples[g.id][d.batchSize:]

	if !g.params.GenerateMACs {
		result = append([]share.Triple(nil), result...)
		for i := range result {
			result[i].A.MAC = ot.Label{}
			result[i].B.MAC = ot.Label{}
			result[i].C.MAC = ot.Label{}
		}
	}
	g.sent += d.cost
	g.TripleCalls++

	return result, nil
}

// GenerateInputs returns the party's shares of the next batch of
// inputs owned by player.
func (g *DealerGenerator) GenerateInputs(player int) ([]share.Input, error) {
	if g.closed {
		return nil, fmt.Errorf("generator closed")
	}
	d := g.dealer
	if player < 0 || player >= len(d.keys) {
		return nil, fmt.Errorf("invalid input player %v: expected [0...%v[",
			player, len(d.keys))
	}
	d.m.Lock()
	defer d.m.Unlock()

	queue := g.stream.inputs[player]
	if len(queue[g.id]) == 0 {
		d.dealInputs(g.stream, player)
	}
	result := queue[g.id][:d.batchSize:d.batchSize]
	queue[g.id] = queue[g.id][d.batchSize:]

	if !g.params.GenerateMACs {
		result = append([]share.Input(nil), result...)
		for i := range result {
			result[i].MAC = ot.Label{}
		}
	}
	g.sent += d.cost
	g.InputCalls++

	return result, nil
}
