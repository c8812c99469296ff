//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prep

import (
	"crypto/rand"
	"testing"

	"github.com/markkurossi/tinier/ot"
	"github.com/markkurossi/tinier/p2p"
	"github.com/markkurossi/tinier/party"
	"github.com/markkurossi/tinier/share"
	"github.com/markkurossi/tinier/triplegen"
	"github.com/stretchr/testify/require"
)

// mockGenerator returns fixed triples and numbered inputs. Each call
// costs a fixed number of bytes.
type mockGenerator struct {
	id          int
	nplayers    int
	batchSize   int
	nthreads    int
	params      triplegen.Params
	key         share.KeyShare
	triple      share.Triple
	cost        uint64
	sent        uint64
	single      bool
	closed      bool
	tripleCalls int
	inputCalls  map[int]int
	next        uint64
	batches     [][]share.Input
}

func (m *mockGenerator) GenerateTriples() ([]share.Triple, error) {
	m.tripleCalls++
	m.sent += m.cost

	result := make([]share.Triple, m.batchSize)
	for i := range result {
		result[i] = m.triple
	}
	return result, nil
}

func (m *mockGenerator) GenerateInputs(player int) ([]share.Input, error) {
	m.inputCalls[player]++
	m.sent += m.cost

	result := make([]share.Input, m.batchSize)
	for i := range result {
		m.next++
		v := m.next%3 == 0
		result[i] = share.Input{
			Bit: share.Bit{
				V: v,
				MAC: ot.Label{
					D0: uint64(player),
					D1: m.next,
				},
			},
			Clear: v && player == m.id,
		}
	}
	m.batches = append(m.batches, result)
	return result, nil
}

func (m *mockGenerator) BytesSent() uint64 {
	return m.sent
}

func (m *mockGenerator) SetSingleThreaded(single bool) {
	m.single = single
}

func (m *mockGenerator) Close() error {
	m.closed = true
	return nil
}

// mockFactory creates mock generators and records them in creation
// order.
type mockFactory struct {
	gens   []*mockGenerator
	triple share.Triple
	cost   uint64
	err    error
}

func (f *mockFactory) New(setup *triplegen.OTSetup, g *party.Group,
	nplayers, batchSize, nthreads int, params triplegen.Params,
	key share.KeyShare) (TripleGenerator, error) {

	if f.err != nil {
		return nil, f.err
	}
	gen := &mockGenerator{
		id:         g.ID,
		nplayers:   nplayers,
		batchSize:  batchSize,
		nthreads:   nthreads,
		params:     params,
		key:        key,
		triple:     f.triple,
		cost:       f.cost,
		inputCalls: make(map[int]int),
	}
	f.gens = append(f.gens, gen)
	return gen, nil
}

// newThread creates the thread of party 0 in a group of n parties.
// The peer connections are never used.
func newThread(t *testing.T, n int) *party.Thread {
	t.Helper()

	mesh := p2p.Mesh(n)
	g, err := party.NewGroup(0, mesh[0], nil)
	require.NoError(t, err)
	thread, err := party.NewThread(g, rand.Reader)
	require.NoError(t, err)

	return thread
}

func newMockPrep(t *testing.T, n, batchSize int, mode Mode) (
	*SharePrep, *mockFactory) {

	t.Helper()

	f := &mockFactory{
		cost: 100,
	}
	thread := newThread(t, n)
	p := New(NewUsage(n), thread, mode,
		WithOptions(Options{BatchSize: batchSize}),
		WithGeneratorFactory(f.New))

	return p, f
}
