//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package party

import (
	"crypto/rand"
	"testing"

	"github.com/markkurossi/tinier/ot"
	"github.com/markkurossi/tinier/p2p"
	"github.com/markkurossi/tinier/share"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func newThreads(t *testing.T, n int) []*Thread {
	t.Helper()

	mesh := p2p.Mesh(n)
	threads := make([]*Thread, n)
	for i := 0; i < n; i++ {
		g, err := NewGroup(i, mesh[i], nil)
		require.NoError(t, err)
		threads[i], err = NewThread(g, rand.Reader)
		require.NoError(t, err)
	}
	t.Cleanup(func() {
		for _, th := range threads {
			th.P.Close()
		}
	})
	return threads
}

// deal creates authenticated shares of the values for all parties.
func deal(t *testing.T, threads []*Thread, values []bool) [][]share.Bit {
	t.Helper()

	var keys []share.KeyShare
	for _, th := range threads {
		keys = append(keys, th.MC.KeyShare())
	}
	delta := share.GlobalKey(keys)

	result := make([][]share.Bit, len(threads))
	for i := range result {
		result[i] = make([]share.Bit, len(values))
	}
	for k, x := range values {
		v := x
		mac := delta.Select(x)
		for i := 1; i < len(threads); i++ {
			r, err := ot.NewLabel(rand.Reader)
			require.NoError(t, err)
			result[i][k] = share.Bit{
				V:   r.LSB(),
				MAC: r,
			}
			v = v != r.LSB()
			mac.Xor(r)
		}
		result[0][k] = share.Bit{
			V:   v,
			MAC: mac,
		}
	}
	return result
}

func TestNewGroup(t *testing.T) {
	mesh := p2p.Mesh(3)

	_, err := NewGroup(3, mesh[0], nil)
	assert.Error(t, err)
	_, err = NewGroup(1, mesh[0], nil)
	assert.Error(t, err)

	g, err := NewGroup(1, mesh[1], nil)
	require.NoError(t, err)
	assert.Equal(t, 3, g.NumPlayers())
	assert.Equal(t, []int{0, 2}, g.Peers())
}

func TestExchange(t *testing.T) {
	const n = 4
	threads := newThreads(t, n)

	type msg struct {
		ID   int
		Data []byte
	}

	var eg errgroup.Group
	for i := 0; i < n; i++ {
		g := threads[i].P
		eg.Go(func() error {
			all, err := Exchange(g, msg{
				ID:   g.ID,
				Data: []byte{byte(g.ID)},
			})
			if err != nil {
				return err
			}
			for j, m := range all {
				if m.ID != j || len(m.Data) != 1 || m.Data[0] != byte(j) {
					t.Errorf("party %v: invalid message %v: %v", g.ID, j, m)
				}
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())
}

func TestMACCheck(t *testing.T) {
	const n = 3
	threads := newThreads(t, n)

	values := []bool{true, false, true, true, false}
	shares := deal(t, threads, values)

	var eg errgroup.Group
	for i := 0; i < n; i++ {
		th := threads[i]
		eg.Go(func() error {
			opened, err := th.MC.Open(shares[th.P.ID])
			if err != nil {
				return err
			}
			assert.Equal(t, values, opened)
			assert.Equal(t, len(values), th.MC.Pending())
			if err := th.MC.Check(); err != nil {
				return err
			}
			assert.Equal(t, 0, th.MC.Pending())
			return nil
		})
	}
	require.NoError(t, eg.Wait())
}

func TestMACCheckTampered(t *testing.T) {
	const n = 3
	threads := newThreads(t, n)

	values := []bool{true, false, true}
	shares := deal(t, threads, values)

	// Party 2 flips its share of the second value.
	shares[2][1].V = !shares[2][1].V

	var eg errgroup.Group
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		th := threads[i]
		eg.Go(func() error {
			if _, err := th.MC.Open(shares[th.P.ID]); err != nil {
				return err
			}
			errs[th.P.ID] = th.MC.Check()
			return nil
		})
	}
	require.NoError(t, eg.Wait())
	for i, err := range errs {
		assert.ErrorIs(t, err, ErrMACCheck, "party %v", i)
	}
}
