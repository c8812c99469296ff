//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package triplegen implements the OT-based generators of
// authenticated multiplication triples and input shares.
package triplegen

import (
	"fmt"
	"io"

	"github.com/markkurossi/tinier/ot"
)

// Params define the generation parameters.
type Params struct {
	// GenerateMACs enables the MAC shares of the generated values. If
	// unset, the MAC shares are zero.
	GenerateMACs bool

	// Amplify combines two raw triples into one output triple.
	Amplify bool

	// Check enables the consistency check of the OT extensions.
	Check bool
}

func (p Params) String() string {
	return fmt.Sprintf("macs=%v, amplify=%v, check=%v",
		p.GenerateMACs, p.Amplify, p.Check)
}

// OTSetup issues fresh base OT instances for generators.
type OTSetup struct {
	Rand  io.Reader
	newOT func(rand io.Reader) ot.OT
}

// NewOTSetup creates a new OT setup using Chou-Orlandi base OTs.
func NewOTSetup(rand io.Reader) *OTSetup {
	return &OTSetup{
		Rand: rand,
		newOT: func(rand io.Reader) ot.OT {
			return ot.NewCO(rand)
		},
	}
}

// NewOT creates a new base OT instance.
func (setup *OTSetup) NewOT() ot.OT {
	return setup.newOT(setup.Rand)
}
