//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package triplegen

import (
	"crypto/rand"
	"testing"

	"github.com/markkurossi/tinier/p2p"
	"github.com/markkurossi/tinier/party"
	"github.com/markkurossi/tinier/share"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDealer(t *testing.T) {
	const n = 3
	const batchSize = 16

	mesh := p2p.Mesh(n)
	keys := make([]share.KeyShare, n)
	groups := make([]*party.Group, n)
	for i := range keys {
		var err error
		keys[i], err = share.NewKeyShare(rand.Reader)
		require.NoError(t, err)
		groups[i], err = party.NewGroup(i, mesh[i], nil)
		require.NoError(t, err)
	}
	dealer, err := NewDealer(keys, batchSize, 1000, rand.Reader)
	require.NoError(t, err)

	gens := make([]*DealerGenerator, n)
	for i := range gens {
		gens[i], err = dealer.NewGenerator(nil, groups[i], -1, batchSize, 1,
			Params{GenerateMACs: true}, keys[i])
		require.NoError(t, err)
	}

	_, err = dealer.NewGenerator(nil, groups[0], -1, batchSize, 1,
		Params{}, keys[1])
	assert.Error(t, err)

	// Parties may call in any interleaving.
	var all [n][]share.Triple
	for _, i := range []int{2, 0, 1} {
		all[i], err = gens[i].GenerateTriples()
		require.NoError(t, err)
	}
	verifyTriples(t, all[:], keys, batchSize)

	var inputs [n][]share.Input
	for _, i := range []int{1, 2, 0} {
		inputs[i], err = gens[i].GenerateInputs(1)
		require.NoError(t, err)
	}
	for k := 0; k < batchSize; k++ {
		var shares []share.Bit
		for i := range inputs {
			shares = append(shares, inputs[i][k].Bit)
		}
		v, err := share.Verify(shares, keys)
		require.NoError(t, err)
		assert.Equal(t, inputs[1][k].Clear, v)
	}

	assert.Equal(t, uint64(2000), gens[0].BytesSent())
	assert.Equal(t, 1, gens[0].TripleCalls)
	assert.Equal(t, 1, gens[0].InputCalls)

	require.NoError(t, gens[0].Close())
	_, err = gens[0].GenerateTriples()
	assert.Error(t, err)
}
