//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestMITCCRH(t *testing.T) {
	const (
		batchSize = 8
		k         = 8
		h         = 2
	)
	var s Label
	mitccrh := NewMITCCRH(s, batchSize)

	blks := make([]Label, k*h)
	mitccrh.Hash(blks, k, h)

	// The first key is the all-zero AES key.
	expected, err := hex.DecodeString("66e94bd4ef8a2c3b884cfa59ca342b2e")
	if err != nil {
		t.Fatal(err)
	}
	var ld LabelData
	for j := 0; j < h; j++ {
		result := blks[j].Bytes(&ld)
		if !bytes.Equal(expected, result) {
			t.Errorf("block %d: %x != %x", j, result, expected)
		}
	}
	for i := 1; i < k; i++ {
		if !blks[i*h].Equal(blks[i*h+1]) {
			t.Errorf("group %d: blocks differ", i)
		}
		if blks[i*h].Equal(blks[0]) {
			t.Errorf("group %d: same key as group 0", i)
		}
	}

	// Peers with the same seed compute the same hashes.
	peer := NewMITCCRH(s, batchSize)
	pblks := make([]Label, k*h)
	peer.Hash(pblks, k, h)
	for i := range blks {
		if !blks[i].Equal(pblks[i]) {
			t.Errorf("block %d: peer mismatch", i)
		}
	}
}

func BenchmarkMITCCRH(b *testing.B) {
	const batchSize = 8
	var s Label
	mitccrh := NewMITCCRH(s, batchSize)

	var pad [2 * batchSize]Label

	for b.Loop() {
		mitccrh.Hash(pad[:], batchSize, 2)
	}
}
