//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prep

import (
	"fmt"
	"io"

	"github.com/markkurossi/tabulate"
)

// Usage records the preprocessed values the online phase consumes.
type Usage struct {
	Triples int64
	Bits    int64
	Inputs  []int64
}

// NewUsage creates a new usage record for nplayers.
func NewUsage(nplayers int) *Usage {
	return &Usage{
		Inputs: make([]int64, nplayers),
	}
}

// AddInput records the consumption of one input of player.
func (u *Usage) AddInput(player int) {
	for len(u.Inputs) <= player {
		u.Inputs = append(u.Inputs, 0)
	}
	u.Inputs[player]++
}

// Add adds the usage o to this usage.
func (u *Usage) Add(o *Usage) {
	u.Triples += o.Triples
	u.Bits += o.Bits
	for player, count := range o.Inputs {
		for len(u.Inputs) <= player {
			u.Inputs = append(u.Inputs, 0)
		}
		u.Inputs[player] += count
	}
}

// Print prints the usage table to w.
func (u *Usage) Print(w io.Writer) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Type").SetAlign(tabulate.ML)
	tab.Header("Count").SetAlign(tabulate.MR)

	row := tab.Row()
	row.Column("Triples")
	row.Column(fmt.Sprintf("%v", u.Triples))

	row = tab.Row()
	row.Column("Bits")
	row.Column(fmt.Sprintf("%v", u.Bits))

	var total int64
	for player, count := range u.Inputs {
		var prefix string
		if player+1 >= len(u.Inputs) {
			prefix = "╰╴"
		} else {
			prefix = "├╴"
		}
		row = tab.Row()
		row.Column(fmt.Sprintf("%sP%d", prefix, player)).
			SetFormat(tabulate.FmtItalic)
		row.Column(fmt.Sprintf("%v", count)).SetFormat(tabulate.FmtItalic)
		total += count
	}
	row = tab.Row()
	row.Column("Inputs").SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%v", total)).SetFormat(tabulate.FmtBold)

	tab.Print(w)
}
