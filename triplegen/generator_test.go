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
	"golang.org/x/sync/errgroup"
)

func newGenerators(t *testing.T, n, batchSize int, params Params) (
	[]*Generator, []share.KeyShare) {

	t.Helper()

	mesh := p2p.Mesh(n)
	groups := make([]*party.Group, n)
	keys := make([]share.KeyShare, n)
	for i := 0; i < n; i++ {
		var err error
		groups[i], err = party.NewGroup(i, mesh[i], nil)
		require.NoError(t, err)
		keys[i], err = share.NewKeyShare(rand.Reader)
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		for _, g := range groups {
			g.Close()
		}
	})

	gens := make([]*Generator, n)
	var eg errgroup.Group
	for i := 0; i < n; i++ {
		eg.Go(func() error {
			var err error
			gens[i], err = NewGenerator(NewOTSetup(rand.Reader), groups[i],
				-1, batchSize, 1, params, keys[i])
			if err == nil {
				gens[i].SetSingleThreaded(true)
			}
			return err
		})
	}
	require.NoError(t, eg.Wait())
	return gens, keys
}

func parallel[T any](t *testing.T, gens []*Generator,
	fn func(gen *Generator) (T, error)) []T {

	t.Helper()

	result := make([]T, len(gens))
	var eg errgroup.Group
	for i, gen := range gens {
		eg.Go(func() error {
			var err error
			result[i], err = fn(gen)
			return err
		})
	}
	require.NoError(t, eg.Wait())
	return result
}

func verifyTriples(t *testing.T, all [][]share.Triple, keys []share.KeyShare,
	batchSize int) {

	t.Helper()

	for i := range all {
		require.Len(t, all[i], batchSize)
	}
	for k := 0; k < batchSize; k++ {
		var shares []share.Triple
		for i := range all {
			shares = append(shares, all[i][k])
		}
		require.NoError(t, share.VerifyTriple(shares, keys), "triple %v", k)
	}
}

func TestTriples(t *testing.T) {
	for _, n := range []int{2, 3} {
		for _, params := range []Params{
			{GenerateMACs: true},
			{GenerateMACs: true, Check: true},
			{GenerateMACs: true, Amplify: true},
		} {
			t.Run(params.String(), func(t *testing.T) {
				const batchSize = 100

				gens, keys := newGenerators(t, n, batchSize, params)
				for round := 0; round < 2; round++ {
					all := parallel(t, gens,
						func(gen *Generator) ([]share.Triple, error) {
							return gen.GenerateTriples()
						})
					verifyTriples(t, all, keys, batchSize)
				}
			})
		}
	}
}

func TestTriplesNoMACs(t *testing.T) {
	const batchSize = 37

	gens, _ := newGenerators(t, 3, batchSize, Params{})
	all := parallel(t, gens, func(gen *Generator) ([]share.Triple, error) {
		return gen.GenerateTriples()
	})
	for k := 0; k < batchSize; k++ {
		var a, b, c []share.Bit
		for i := range all {
			tr := all[i][k]
			assert.True(t, tr.A.MAC.IsZero())
			assert.True(t, tr.C.MAC.IsZero())
			a = append(a, tr.A)
			b = append(b, tr.B)
			c = append(c, tr.C)
		}
		av, _ := share.Reconstruct(a)
		bv, _ := share.Reconstruct(b)
		cv, _ := share.Reconstruct(c)
		assert.Equal(t, av && bv, cv, "triple %v", k)
	}
}

func TestInputs(t *testing.T) {
	const n = 3
	const batchSize = 50

	gens, keys := newGenerators(t, n, batchSize,
		Params{GenerateMACs: true, Check: true})

	for owner := 0; owner < n; owner++ {
		all := parallel(t, gens, func(gen *Generator) ([]share.Input, error) {
			return gen.GenerateInputs(owner)
		})
		for k := 0; k < batchSize; k++ {
			var shares []share.Bit
			for i := range all {
				require.Len(t, all[i], batchSize)
				if i != owner {
					assert.False(t, all[i][k].V)
					assert.False(t, all[i][k].Clear)
				}
				shares = append(shares, all[i][k].Bit)
			}
			v, err := share.Verify(shares, keys)
			require.NoError(t, err, "owner %v, input %v", owner, k)
			assert.Equal(t, all[owner][k].Clear, v)
		}
	}
}

func TestInvalidPlayer(t *testing.T) {
	gens, _ := newGenerators(t, 2, 8, Params{GenerateMACs: true})

	_, err := gens[0].GenerateInputs(2)
	assert.Error(t, err)
	_, err = gens[0].GenerateInputs(-1)
	assert.Error(t, err)
}

func TestBytesSent(t *testing.T) {
	gens, _ := newGenerators(t, 2, 64, Params{GenerateMACs: true})

	setup := gens[0].BytesSent()
	assert.NotZero(t, setup)

	parallel(t, gens, func(gen *Generator) ([]share.Triple, error) {
		return gen.GenerateTriples()
	})
	triples := gens[0].BytesSent()
	assert.Greater(t, triples, setup)
	assert.NotZero(t, gens[1].BytesSent())

	// Only the owner sends in the input generation.
	for owner := range gens {
		before := []uint64{gens[0].BytesSent(), gens[1].BytesSent()}
		parallel(t, gens, func(gen *Generator) ([]share.Input, error) {
			return gen.GenerateInputs(owner)
		})
		other := 1 - owner
		assert.Greater(t, gens[owner].BytesSent(), before[owner],
			"owner %v", owner)
		assert.Equal(t, before[other], gens[other].BytesSent(),
			"non-owner %v", other)
	}

	require.NoError(t, gens[0].Close())
	_, err := gens[0].GenerateTriples()
	assert.Error(t, err)
}

func TestMultiThreaded(t *testing.T) {
	const batchSize = 200

	gens, keys := newGenerators(t, 2, batchSize, Params{GenerateMACs: true})
	for _, gen := range gens {
		gen.nthreads = 4
		gen.SetSingleThreaded(false)
	}
	all := parallel(t, gens, func(gen *Generator) ([]share.Triple, error) {
		return gen.GenerateTriples()
	})
	verifyTriples(t, all, keys, batchSize)
}
