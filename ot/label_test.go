//
// label_test.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"testing"
)

func TestLabelBits(t *testing.T) {
	var label Label

	for i := 0; i < 128; i += 3 {
		label.SetBit(i, 1)
	}
	for i := 0; i < 128; i++ {
		expected := uint(0)
		if i%3 == 0 {
			expected = 1
		}
		if label.Bit(i) != expected {
			t.Fatalf("bit %d: got %v, expected %v", i, label.Bit(i), expected)
		}
	}
	label.SetBit(0, 0)
	if label.LSB() {
		t.Errorf("LSB not cleared")
	}
	label.SetBit(127, 0)
	if label.D0&0x8000000000000000 != 0 {
		t.Errorf("bit 127 not cleared: %v", label)
	}
}

func TestLabelData(t *testing.T) {
	label, err := NewLabel(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	var data LabelData
	var decoded Label
	decoded.SetBytes(label.Bytes(&data))
	if !decoded.Equal(label) {
		t.Errorf("SetBytes: got %v, expected %v", decoded, label)
	}

	sum := label
	sum.Xor(label)
	if !sum.IsZero() {
		t.Errorf("x^x != 0: %v", sum)
	}
	if !label.Select(false).IsZero() || !label.Select(true).Equal(label) {
		t.Errorf("Select failed")
	}
}
