//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package triplegen

import (
	"fmt"

	"github.com/markkurossi/tinier/ot"
	"github.com/markkurossi/tinier/party"
	"github.com/markkurossi/tinier/share"
)

// GenerateTriples generates a batch of authenticated triples.
func (gen *Generator) GenerateTriples() ([]share.Triple, error) {
	if err := gen.checkOpen(); err != nil {
		return nil, err
	}
	defer gen.account(gen.stats())

	n := gen.batchSize
	if gen.params.Amplify {
		n *= 2
	}
	triples, err := gen.generateRaw(n)
	if err != nil {
		return nil, fmt.Errorf("triples: %w", err)
	}
	if gen.params.Amplify {
		triples, err = gen.amplify(triples)
		if err != nil {
			return nil, fmt.Errorf("triples: %w", err)
		}
	}
	gen.log.Debugf("generated %v triples", len(triples))

	return triples, nil
}

// generateRaw generates n triples. The party's share of c is a_i·b_i
// ⊕ ⊕_{j≠i} (a_i·b_j ⊕ a_j·b_i) where the cross products are XOR
// shared between the parties i and j with correlated OTs. For the
// product a_i·b_j, the party j sends e = H(q) ⊕ H(q ⊕ Δ_j) ⊕ b_j
// and keeps H(q). The party i receives t = q ⊕ a_i·Δ_j and computes
// H(t) ⊕ a_i·e.
func (gen *Generator) generateRaw(n int) ([]share.Triple, error) {
	a := gen.rand.Bits(n)
	b := gen.rand.Bits(n)
	cross := make([]bool, n)

	err := gen.pairwise(gen.group.Peers(),
		func(id int) error {
			p := gen.peers[id]
			q, err := p.sender.Send(n, gen.params.Check)
			if err != nil {
				return err
			}
			h0, h1 := hashPairs(p.sendHash, q, gen.key.Delta)
			e := make([]bool, n)
			for i := 0; i < n; i++ {
				e[i] = h0[i] != h1[i] != b[i]
				cross[i] = cross[i] != h0[i]
			}
			conn := gen.group.Conns[id]
			if err := conn.SendData(packBits(e)); err != nil {
				return err
			}
			return conn.Flush()
		},
		func(id int) error {
			p := gen.peers[id]
			t := make([]ot.Label, n)
			if err := p.receiver.Receive(a, t, gen.params.Check); err != nil {
				return err
			}
			h := hashSingles(p.recvHash, t)
			data, err := gen.group.Conns[id].ReceiveData()
			if err != nil {
				return err
			}
			e, err := unpackBits(data, n)
			if err != nil {
				return err
			}
			for i := 0; i < n; i++ {
				cross[i] = cross[i] != h[i] != (a[i] && e[i])
			}
			return nil
		})
	if err != nil {
		return nil, err
	}

	// Authenticate a, b, and c in one pass.
	values := make([]bool, 3*n)
	copy(values, a)
	copy(values[n:], b)
	gen.parallel(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			values[2*n+i] = (a[i] && b[i]) != cross[i]
		}
	})
	macs, err := gen.authenticate(values)
	if err != nil {
		return nil, err
	}

	triples := make([]share.Triple, n)
	gen.parallel(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			triples[i] = share.Triple{
				A: share.Bit{V: values[i], MAC: macs[i]},
				B: share.Bit{V: values[n+i], MAC: macs[n+i]},
				C: share.Bit{V: values[2*n+i], MAC: macs[2*n+i]},
			}
		}
	})
	return triples, nil
}

// amplify combines the triple pairs (t, t') into triples (a⊕a', b,
// c⊕c'⊕d·a') where d = b⊕b' is opened over the group.
func (gen *Generator) amplify(raw []share.Triple) ([]share.Triple, error) {
	n := len(raw) / 2

	d := make([]share.Bit, n)
	for i := 0; i < n; i++ {
		d[i] = raw[i].B.Xor(raw[n+i].B)
	}
	var opened []bool
	var err error
	if gen.params.GenerateMACs {
		opened, err = gen.mc.Open(d)
		if err == nil {
			err = gen.mc.Check()
		}
	} else {
		opened, err = party.Open(gen.group, d)
	}
	if err != nil {
		return nil, fmt.Errorf("amplify: %w", err)
	}

	result := make([]share.Triple, n)
	gen.parallel(n, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			t0 := raw[i]
			t1 := raw[n+i]
			result[i] = share.Triple{
				A: t0.A.Xor(t1.A),
				B: t0.B,
				C: t0.C.Xor(t1.C).Xor(t1.A.And(opened[i])),
			}
		}
	})
	return result, nil
}
