//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package share implements authenticated bit shares. Each party holds
// an XOR share of the bit and a share of its MAC x·Δ over GF(2^128)
// where Δ is the XOR of the parties' key shares.
package share

import (
	"fmt"

	"github.com/markkurossi/tinier/ot"
)

// Bit implements one party's authenticated share of a bit.
type Bit struct {
	V   bool
	MAC ot.Label
}

func (b Bit) String() string {
	var v int
	if b.V {
		v = 1
	}
	return fmt.Sprintf("%d/%s", v, b.MAC)
}

// Xor returns the share of b ⊕ o.
func (b Bit) Xor(o Bit) Bit {
	b.V = b.V != o.V
	b.MAC.Xor(o.MAC)
	return b
}

// And returns the share of b·c for the public bit c.
func (b Bit) And(c bool) Bit {
	if !c {
		return Bit{}
	}
	return b
}

// XorPublic returns the share of b ⊕ c for the public bit c. Exactly
// one party must set adder to add c to its value share. All parties
// add c·Δ_i to their MAC shares.
func (b Bit) XorPublic(c, adder bool, key KeyShare) Bit {
	if !c {
		return b
	}
	if adder {
		b.V = !b.V
	}
	b.MAC.Xor(key.Delta)
	return b
}

// Triple implements a share of a multiplication triple c = a·b.
type Triple struct {
	A Bit
	B Bit
	C Bit
}

func (t Triple) String() string {
	return fmt.Sprintf("(%s,%s,%s)", t.A, t.B, t.C)
}

// Input implements a share of a value owned by one party. The Clear
// field holds the value in the owner's view and is false for all
// other parties.
type Input struct {
	Bit
	Clear bool
}

// Reconstruct reconstructs the value and the MAC from all parties'
// shares.
func Reconstruct(shares []Bit) (bool, ot.Label) {
	var v bool
	var mac ot.Label
	for _, s := range shares {
		v = v != s.V
		mac.Xor(s.MAC)
	}
	return v, mac
}

// Verify reconstructs the shares and verifies the MAC against the
// global key of the key shares. The function returns the
// reconstructed value.
func Verify(shares []Bit, keys []KeyShare) (bool, error) {
	if len(shares) != len(keys) {
		return false, fmt.Errorf("got %v shares for %v keys",
			len(shares), len(keys))
	}
	v, mac := Reconstruct(shares)
	expected := GlobalKey(keys).Select(v)
	if !mac.Equal(expected) {
		return v, fmt.Errorf("invalid MAC: got %v, expected %v",
			mac, expected)
	}
	return v, nil
}

// VerifyTriple verifies the MACs of the triple shares and the
// multiplication c = a·b.
func VerifyTriple(shares []Triple, keys []KeyShare) error {
	var a, b, c []Bit
	for _, t := range shares {
		a = append(a, t.A)
		b = append(b, t.B)
		c = append(c, t.C)
	}
	av, err := Verify(a, keys)
	if err != nil {
		return fmt.Errorf("a: %w", err)
	}
	bv, err := Verify(b, keys)
	if err != nil {
		return fmt.Errorf("b: %w", err)
	}
	cv, err := Verify(c, keys)
	if err != nil {
		return fmt.Errorf("c: %w", err)
	}
	if cv != (av && bv) {
		return fmt.Errorf("invalid triple: %v·%v != %v", av, bv, cv)
	}
	return nil
}
