//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package triplegen

import (
	"fmt"

	"github.com/markkurossi/tinier/ot"
)

// authenticate computes the MAC shares of the party's value shares
// x. The MAC share of x_i is x_i·Δ_i ⊕ ⊕_j Q_j ⊕ ⊕_j T_j where Q_j are
// the correlated OTs sent to the peer j and T_j are the correlated
// OTs received from peer j with the choice bits x.
func (gen *Generator) authenticate(x []bool) ([]ot.Label, error) {
	macs := make([]ot.Label, len(x))
	if !gen.params.GenerateMACs {
		return macs, nil
	}
	gen.parallel(len(x), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			macs[i] = gen.key.Delta.Select(x[i])
		}
	})

	err := gen.pairwise(gen.group.Peers(),
		func(id int) error {
			q, err := gen.peers[id].sender.Send(len(x), gen.params.Check)
			if err != nil {
				return err
			}
			xorLabels(macs, q)
			return nil
		},
		func(id int) error {
			t := make([]ot.Label, len(x))
			err := gen.peers[id].receiver.Receive(x, t, gen.params.Check)
			if err != nil {
				return err
			}
			xorLabels(macs, t)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return macs, nil
}

func xorLabels(dst, src []ot.Label) {
	for i := range dst {
		dst[i].Xor(src[i])
	}
}

// hashPairs computes the LSBs of the correlation robust hashes of q
// and q ⊕ delta.
func hashPairs(h *ot.MITCCRH, q []ot.Label, delta ot.Label) (h0, h1 []bool) {
	h0 = make([]bool, len(q))
	h1 = make([]bool, len(q))

	var blks [hashWidth * 2]ot.Label
	for ofs := 0; ofs < len(q); ofs += hashWidth {
		count := min(len(q)-ofs, hashWidth)
		for i := 0; i < hashWidth; i++ {
			var l ot.Label
			if i < count {
				l = q[ofs+i]
			}
			blks[i*2] = l
			l.Xor(delta)
			blks[i*2+1] = l
		}
		h.Hash(blks[:], hashWidth, 2)
		for i := 0; i < count; i++ {
			h0[ofs+i] = blks[i*2].LSB()
			h1[ofs+i] = blks[i*2+1].LSB()
		}
	}
	return
}

// hashSingles computes the LSBs of the correlation robust hashes of
// t. The hash keys match the keys hashPairs uses for the same
// indices.
func hashSingles(h *ot.MITCCRH, t []ot.Label) []bool {
	result := make([]bool, len(t))

	var blks [hashWidth]ot.Label
	for ofs := 0; ofs < len(t); ofs += hashWidth {
		count := min(len(t)-ofs, hashWidth)
		for i := 0; i < hashWidth; i++ {
			if i < count {
				blks[i] = t[ofs+i]
			} else {
				blks[i] = ot.Label{}
			}
		}
		h.Hash(blks[:], hashWidth, 1)
		for i := 0; i < count; i++ {
			result[ofs+i] = blks[i].LSB()
		}
	}
	return result
}

func packBits(bits []bool) []byte {
	result := make([]byte, (len(bits)+7)/8)
	for i, b := range bits {
		if b {
			result[i/8] |= 1 << (i % 8)
		}
	}
	return result
}

func unpackBits(data []byte, n int) ([]bool, error) {
	if len(data) != (n+7)/8 {
		return nil, fmt.Errorf("invalid bit vector length %v, expected %v",
			len(data), (n+7)/8)
	}
	result := make([]bool, n)
	for i := range result {
		result[i] = (data[i/8]>>(i%8))&1 == 1
	}
	return result, nil
}
