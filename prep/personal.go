//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prep

import (
	"fmt"

	"github.com/markkurossi/tinier/party"
	"github.com/markkurossi/tinier/share"
)

// Buffers define the buffering operations that refill the
// preprocessing queues.
type Buffers interface {
	BufferTriples() error
	BufferBits() error
	BufferInputs(player int) error
}

// PersonalPrep implements the preprocessing queues and their draining
// accessors. The queues are refilled with the Buffers operations.
type PersonalPrep struct {
	usage   *Usage
	mode    Mode
	buffers Buffers
	triples []share.Triple
	bits    []share.Bit
	inputs  [][]share.Input
}

func newPersonalPrep(usage *Usage, mode Mode, buffers Buffers) PersonalPrep {
	return PersonalPrep{
		usage:   usage,
		mode:    mode,
		buffers: buffers,
	}
}

// Mode returns the preprocessing's trust mode.
func (p *PersonalPrep) Mode() Mode {
	return p.mode
}

// Usage returns the preprocessing's usage record.
func (p *PersonalPrep) Usage() *Usage {
	return p.usage
}

// Triple returns the next triple.
func (p *PersonalPrep) Triple() (share.Triple, error) {
	if len(p.triples) == 0 {
		if err := p.buffers.BufferTriples(); err != nil {
			return share.Triple{}, err
		}
		if len(p.triples) == 0 {
			return share.Triple{}, fmt.Errorf("no triples")
		}
	}
	t := p.triples[0]
	p.triples = p.triples[1:]
	p.usage.Triples++

	return t, nil
}

// Bit returns the next random bit.
func (p *PersonalPrep) Bit() (share.Bit, error) {
	if len(p.bits) == 0 {
		if err := p.buffers.BufferBits(); err != nil {
			return share.Bit{}, err
		}
		if len(p.bits) == 0 {
			return share.Bit{}, fmt.Errorf("no bits")
		}
	}
	b := p.bits[0]
	p.bits = p.bits[1:]
	p.usage.Bits++

	return b, nil
}

// Input returns the next input of player.
func (p *PersonalPrep) Input(player int) (share.Input, error) {
	in, err := p.popInput(player)
	if err != nil {
		return share.Input{}, err
	}
	p.usage.AddInput(player)
	return in, nil
}

func (p *PersonalPrep) popInput(player int) (share.Input, error) {
	if player < 0 || player >= len(p.inputs) || len(p.inputs[player]) == 0 {
		if err := p.buffers.BufferInputs(player); err != nil {
			return share.Input{}, err
		}
		if len(p.inputs[player]) == 0 {
			return share.Input{}, fmt.Errorf("no inputs for player %v", player)
		}
	}
	in := p.inputs[player][0]
	p.inputs[player] = p.inputs[player][1:]

	return in, nil
}

// RandomFromInputs returns a random bit as the XOR of one input of
// each player [0...n[. The consumed inputs are not recorded in the
// usage.
func (p *PersonalPrep) RandomFromInputs(n int) (share.Bit, error) {
	var result share.Bit
	for player := 0; player < n; player++ {
		in, err := p.popInput(player)
		if err != nil {
			return share.Bit{}, err
		}
		result = result.Xor(in.Bit)
	}
	return result, nil
}

// resizeInputs resizes the input queues for n players.
func (p *PersonalPrep) resizeInputs(n int) {
	for len(p.inputs) < n {
		p.inputs = append(p.inputs, nil)
	}
	p.inputs = p.inputs[:n]
}

// bufferPersonalTriples buffers triples owned by the player owner. The
// triples are created from three inputs (r_a, r_b, r_c) of the owner:
// a = r_a, b = r_b, and the owner broadcasts d = (a·b) ⊕ r_c which all
// parties add to their shares of r_c.
func (p *PersonalPrep) bufferPersonalTriples(owner int, gen TripleGenerator,
	g *party.Group, key share.KeyShare) error {

	if gen == nil {
		panic("personal triples: generator not bound")
	}
	if owner < 0 || owner >= g.NumPlayers() {
		return fmt.Errorf("personal triples: invalid owner %v: "+
			"expected [0...%v[", owner, g.NumPlayers())
	}

	var inputs []share.Input
	for i := 0; i < 3; i++ {
		batch, err := gen.GenerateInputs(owner)
		if err != nil {
			return fmt.Errorf("personal triples: %w", err)
		}
		inputs = append(inputs, batch...)
	}
	n := len(inputs) / 3

	var d []byte
	if g.ID == owner {
		d = make([]byte, (n+7)/8)
		for t := 0; t < n; t++ {
			a := inputs[3*t].Clear
			b := inputs[3*t+1].Clear
			if (a && b) != inputs[3*t+2].Clear {
				d[t/8] |= 1 << (t % 8)
			}
		}
	}
	all, err := party.Exchange(g, d)
	if err != nil {
		return fmt.Errorf("personal triples: %w", err)
	}
	d = all[owner]
	if len(d) != (n+7)/8 {
		return fmt.Errorf("personal triples: invalid correction length %v",
			len(d))
	}
	for t := 0; t < n; t++ {
		c := inputs[3*t+2].Bit
		dt := (d[t/8]>>(t%8))&1 == 1
		p.triples = append(p.triples, share.Triple{
			A: inputs[3*t].Bit,
			B: inputs[3*t+1].Bit,
			C: c.XorPublic(dt, g.ID == owner, key),
		})
	}
	return nil
}
