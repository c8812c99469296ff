//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package party

import (
	"io"

	"github.com/markkurossi/tinier/share"
)

// Protocol defines the online protocol instance the preprocessing
// binds to.
type Protocol interface {
	// Group returns the protocol's network group.
	Group() *Group
}

// Thread holds the per-thread context: the network group and the MAC
// check with the party's key share.
type Thread struct {
	P  *Group
	MC *MACCheck
}

// NewThread creates a new thread context with a random key share.
func NewThread(g *Group, rand io.Reader) (*Thread, error) {
	key, err := share.NewKeyShare(rand)
	if err != nil {
		return nil, err
	}
	return NewThreadWithKey(g, key, rand), nil
}

// NewThreadWithKey creates a new thread context with the key share.
func NewThreadWithKey(g *Group, key share.KeyShare, rand io.Reader) *Thread {
	return &Thread{
		P:  g,
		MC: NewMACCheck(key, g, rand),
	}
}

// Group implements the Protocol.Group.
func (t *Thread) Group() *Group {
	return t.P
}
