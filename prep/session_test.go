//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prep

import (
	"crypto/rand"
	"testing"

	"github.com/markkurossi/tinier/p2p"
	"github.com/markkurossi/tinier/party"
	"github.com/markkurossi/tinier/share"
	"github.com/markkurossi/tinier/triplegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type values struct {
	triples []share.Triple
	bits    []share.Bit
	inputs  [][]share.Input
}

// session creates the preprocessing of all n parties, binds them, and
// drains count values of each kind.
func session(t *testing.T, n, count int, mode Mode,
	factory func(threads []*party.Thread) GeneratorFactory,
	batchSize int) ([]*party.Thread, []values) {

	t.Helper()

	mesh := p2p.Mesh(n)
	threads := make([]*party.Thread, n)
	for i := range threads {
		g, err := party.NewGroup(i, mesh[i], nil)
		require.NoError(t, err)
		threads[i], err = party.NewThread(g, rand.Reader)
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		for _, th := range threads {
			th.P.Close()
		}
	})

	opts := []Option{
		WithOptions(Options{BatchSize: batchSize}),
	}
	if factory != nil {
		opts = append(opts, WithGeneratorFactory(factory(threads)))
	}

	result := make([]values, n)
	var eg errgroup.Group
	for i := range threads {
		eg.Go(func() error {
			p := New(NewUsage(n), threads[i], mode, opts...)
			defer p.Close()

			if err := p.Bind(threads[i]); err != nil {
				return err
			}
			v := &result[i]
			for k := 0; k < count; k++ {
				tr, err := p.Triple()
				if err != nil {
					return err
				}
				v.triples = append(v.triples, tr)
			}
			for k := 0; k < count; k++ {
				b, err := p.Bit()
				if err != nil {
					return err
				}
				v.bits = append(v.bits, b)
			}
			v.inputs = make([][]share.Input, n)
			for player := 0; player < n; player++ {
				for k := 0; k < count; k++ {
					in, err := p.Input(player)
					if err != nil {
						return err
					}
					v.inputs[player] = append(v.inputs[player], in)
				}
			}
			if p.DataSent() == 0 && factory == nil {
				t.Errorf("party %v: no data sent", i)
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	return threads, result
}

func keyShares(threads []*party.Thread) []share.KeyShare {
	var keys []share.KeyShare
	for _, th := range threads {
		keys = append(keys, th.MC.KeyShare())
	}
	return keys
}

func verify(t *testing.T, threads []*party.Thread, all []values,
	owner int) {

	t.Helper()

	keys := keyShares(threads)
	n := len(threads)

	for k := range all[0].triples {
		var shares []share.Triple
		for i := 0; i < n; i++ {
			shares = append(shares, all[i].triples[k])
		}
		require.NoError(t, share.VerifyTriple(shares, keys), "triple %v", k)

		if owner >= 0 {
			// The owner knows the triple in clear.
			for i := 0; i < n; i++ {
				if i != owner {
					assert.False(t, shares[i].A.V)
					assert.False(t, shares[i].B.V)
					assert.False(t, shares[i].C.V)
				}
			}
		}
	}
	for k := range all[0].bits {
		var shares []share.Bit
		for i := 0; i < n; i++ {
			shares = append(shares, all[i].bits[k])
		}
		_, err := share.Verify(shares, keys)
		require.NoError(t, err, "bit %v", k)
	}
	for player := 0; player < n; player++ {
		for k := range all[0].inputs[player] {
			var shares []share.Bit
			for i := 0; i < n; i++ {
				shares = append(shares, all[i].inputs[player][k].Bit)
			}
			v, err := share.Verify(shares, keys)
			require.NoError(t, err, "input %v of player %v", k, player)
			assert.Equal(t, all[player].inputs[player][k].Clear, v)
		}
	}
}

func dealerFactory(t *testing.T, batchSize int) func(
	threads []*party.Thread) GeneratorFactory {

	return func(threads []*party.Thread) GeneratorFactory {
		dealer, err := triplegen.NewDealer(keyShares(threads), batchSize,
			512, rand.Reader)
		require.NoError(t, err)
		return DealerFactory(dealer)
	}
}

func TestDealerSecret(t *testing.T) {
	threads, all := session(t, 3, 25, SecretMode{}, dealerFactory(t, 10), 10)
	verify(t, threads, all, -1)
}

func TestDealerPersonal(t *testing.T) {
	threads, all := session(t, 3, 25, PersonalMode{Owner: 1},
		dealerFactory(t, 10), 10)
	verify(t, threads, all, 1)
}

func TestOTSecret(t *testing.T) {
	threads, all := session(t, 2, 20, SecretMode{}, nil, 16)
	verify(t, threads, all, -1)
}

func TestOTPersonal(t *testing.T) {
	threads, all := session(t, 3, 10, PersonalMode{Owner: 2}, nil, 16)
	verify(t, threads, all, 2)
}
