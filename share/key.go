//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package share

import (
	"io"

	"github.com/markkurossi/tinier/ot"
)

// KeyShare implements a party's share Δ_i of the global MAC key.
type KeyShare struct {
	Delta ot.Label
}

// NewKeyShare creates a random key share.
func NewKeyShare(rand io.Reader) (KeyShare, error) {
	delta, err := ot.NewLabel(rand)
	if err != nil {
		return KeyShare{}, err
	}
	return KeyShare{
		Delta: delta,
	}, nil
}

func (k KeyShare) String() string {
	return k.Delta.String()
}

// GlobalKey returns the global MAC key Δ of the key shares.
func GlobalKey(keys []KeyShare) ot.Label {
	var delta ot.Label
	for _, k := range keys {
		delta.Xor(k.Delta)
	}
	return delta
}
