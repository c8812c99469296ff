//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package triplegen

import (
	"fmt"

	"github.com/markkurossi/tinier/ot"
	"github.com/markkurossi/tinier/share"
)

// GenerateInputs generates a batch of authenticated input shares
// owned by player. The owner holds the random values in clear and
// the other parties hold zero value shares. Only the owner runs
// correlated OTs with its peers.
func (gen *Generator) GenerateInputs(player int) ([]share.Input, error) {
	if player < 0 || player >= gen.nplayers {
		return nil, fmt.Errorf("invalid input player %v: expected [0...%v[",
			player, gen.nplayers)
	}
	if err := gen.checkOpen(); err != nil {
		return nil, err
	}
	defer gen.account(gen.stats())

	n := gen.batchSize
	inputs := make([]share.Input, n)

	if player == gen.group.ID {
		x := gen.rand.Bits(n)
		macs := make([]ot.Label, n)
		if gen.params.GenerateMACs {
			for i := range macs {
				macs[i] = gen.key.Delta.Select(x[i])
			}
			for _, id := range gen.group.Peers() {
				t := make([]ot.Label, n)
				err := gen.peers[id].receiver.Receive(x, t, gen.params.Check)
				if err != nil {
					return nil, fmt.Errorf("inputs: %w", err)
				}
				xorLabels(macs, t)
			}
		}
		for i := range inputs {
			inputs[i] = share.Input{
				Bit: share.Bit{
					V:   x[i],
					MAC: macs[i],
				},
				Clear: x[i],
			}
		}
	} else if gen.params.GenerateMACs {
		q, err := gen.peers[player].sender.Send(n, gen.params.Check)
		if err != nil {
			return nil, fmt.Errorf("inputs: %w", err)
		}
		for i := range inputs {
			inputs[i].MAC = q[i]
		}
	}
	gen.log.Debugf("generated %v inputs for player %v", n, player)

	return inputs, nil
}
