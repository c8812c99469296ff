//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package party

import (
	"errors"
	"fmt"
	"io"

	"github.com/markkurossi/tinier/ot"
	"github.com/markkurossi/tinier/share"
)

// ErrMACCheck is returned when the opened values fail the MAC check.
var ErrMACCheck = errors.New("MAC check failed")

// MACCheck opens authenticated shares and verifies the MACs of the
// opened values.
type MACCheck struct {
	key    share.KeyShare
	group  *Group
	rand   io.Reader
	values []bool
	macs   []ot.Label
}

type opening struct {
	D    share.Decommitment
	Data []byte
}

// NewMACCheck creates a new MAC check with the party's key share.
func NewMACCheck(key share.KeyShare, group *Group, rand io.Reader) *MACCheck {
	return &MACCheck{
		key:   key,
		group: group,
		rand:  rand,
	}
}

// KeyShare returns the party's MAC key share.
func (mc *MACCheck) KeyShare() share.KeyShare {
	return mc.key
}

// Pending returns the number of opened values waiting for Check.
func (mc *MACCheck) Pending() int {
	return len(mc.values)
}

// Open opens the shares over the group. The opened values are
// recorded and their MACs verified on the next Check.
func (mc *MACCheck) Open(shares []share.Bit) ([]bool, error) {
	result, err := Open(mc.group, shares)
	if err != nil {
		return nil, err
	}
	for i, s := range shares {
		mc.values = append(mc.values, result[i])
		mc.macs = append(mc.macs, s.MAC)
	}
	return result, nil
}

// Open opens the value shares over the group without MAC
// verification.
func Open(g *Group, shares []share.Bit) ([]bool, error) {
	packed := make([]byte, (len(shares)+7)/8)
	for i, s := range shares {
		if s.V {
			packed[i/8] |= 1 << (i % 8)
		}
	}
	all, err := Exchange(g, packed)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	for i, p := range all {
		if len(p) != len(packed) {
			return nil, fmt.Errorf("open: party %v sent %v bytes, expected %v",
				i, len(p), len(packed))
		}
	}
	result := make([]bool, len(shares))
	for i := range shares {
		var v bool
		for _, p := range all {
			v = v != ((p[i/8]>>(i%8))&1 == 1)
		}
		result[i] = v
	}
	return result, nil
}

// Check verifies the MACs of all values opened since the previous
// check. The parties agree on random coefficients r_k and verify
// that ⊕_i ⊕_k r_k·(m_{i,k} ⊕ x_k·Δ_i) is zero.
func (mc *MACCheck) Check() error {
	if len(mc.values) == 0 {
		return nil
	}
	seed, err := mc.commitAndOpen(nil)
	if err != nil {
		return fmt.Errorf("MAC check seed: %w", err)
	}
	var coeffSeed [32]byte
	for _, s := range seed {
		if len(s) != len(coeffSeed) {
			return fmt.Errorf("MAC check seed: invalid length %v", len(s))
		}
		for i := range coeffSeed {
			coeffSeed[i] ^= s[i]
		}
	}
	coeffs, err := share.NewSeededBitSource(coeffSeed[:])
	if err != nil {
		return err
	}

	var sigma ot.Label
	for k, x := range mc.values {
		r, err := ot.NewLabel(coeffs)
		if err != nil {
			return err
		}
		m := mc.macs[k]
		m.Xor(mc.key.Delta.Select(x))
		sigma.Xor(ot.Mul(r, m))
	}
	var ld ot.LabelData
	sigmas, err := mc.commitAndOpen(sigma.Bytes(&ld))
	if err != nil {
		return fmt.Errorf("MAC check: %w", err)
	}

	count := len(mc.values)
	mc.values = nil
	mc.macs = nil

	var sum ot.Label
	for _, s := range sigmas {
		if len(s) != len(ld) {
			return fmt.Errorf("MAC check: invalid sigma length %v", len(s))
		}
		var l ot.Label
		l.SetBytes(s)
		sum.Xor(l)
	}
	if !sum.IsZero() {
		mc.group.Log.Warnf("MAC check failed for %v values", count)
		return ErrMACCheck
	}
	mc.group.Log.Debugf("MAC check passed for %v values", count)
	return nil
}

// commitAndOpen runs a commit-then-open round of data. If data is
// nil, the function commits to a random 32-byte value.
func (mc *MACCheck) commitAndOpen(data []byte) ([][]byte, error) {
	if data == nil {
		data = make([]byte, 32)
		if _, err := io.ReadFull(mc.rand, data); err != nil {
			return nil, err
		}
	}
	c, d, err := share.Commit(mc.rand, data)
	if err != nil {
		return nil, err
	}
	commitments, err := Exchange(mc.group, c)
	if err != nil {
		return nil, err
	}
	openings, err := Exchange(mc.group, opening{
		D:    d,
		Data: data,
	})
	if err != nil {
		return nil, err
	}
	result := make([][]byte, len(openings))
	for i, o := range openings {
		if !commitments[i].Open(o.D, o.Data) {
			return nil, fmt.Errorf("party %v: invalid decommitment", i)
		}
		result[i] = o.Data
	}
	return result, nil
}
