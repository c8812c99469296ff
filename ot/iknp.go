//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//
// IKNP OT Extension:
//
// Extending oblivious transfers efficiently
//  - https://www.iacr.org/archive/crypto2003/27290145/27290145.pdf
//
// Actively Secure OT Extension with Optimal Overhead
//  - https://eprint.iacr.org/2015/546.pdf

/*

This implementation is derived from the EMP Toolkit's iknp.h
(https://github.com/emp-toolkit/emp-ot/blob/master/emp-ot/iknp.h)
with original license as follows:

MIT License

Copyright (c) 2018 Xiao Wang (wangxiao1254@gmail.com)

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

*/

package ot

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
)

const (
	// K defines the IKNP security parameter; the number of IKNP base
	// OTs.
	K = 128

	// Chunk size. Must be multiple of 16 (K-bits).
	chunkSize = 2 * 1024

	// The maximum number of byte-rows in a chunk.
	chunkByteRows = chunkSize / K

	// The number of label rows in a chunk.
	chunkRows = chunkByteRows * 8

	// The number of extra OTs consumed by the consistency check.
	checkOTs = 256
)

// IKNPSender implements the correlated OT sender. For each extended
// OT the sender learns q and the receiver learns q ⊕ b·Delta where b
// is the receiver's choice bit.
type IKNPSender struct {
	// Delta defines the correlation delta: b1 = b0 ⊕ Δ
	Delta Label
	io    IO
	g     [K]cipher.Stream
}

// NewIKNPSender creates a new sender. The d is an optional delta. If
// unset, the function creates a random delta. The base OT must be
// initialized as a receiver.
func NewIKNPSender(base OT, io IO, r io.Reader, d *Label) (*IKNPSender, error) {
	var delta Label
	if d == nil {
		var err error
		delta, err = NewLabel(r)
		if err != nil {
			return nil, err
		}
	} else {
		delta = *d
	}

	var flags [K]bool
	for i := 0; i < K; i++ {
		flags[i] = delta.Bit(i) == 1
	}
	var seeds [K]Label
	if err := base.Receive(flags[:], seeds[:]); err != nil {
		return nil, err
	}

	s := &IKNPSender{
		Delta: delta,
		io:    io,
	}
	for i := 0; i < K; i++ {
		var err error
		s.g[i], err = newPrg(seeds[i])
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Send extends n correlated OTs and returns the q labels. If check is
// set, the function verifies the receiver's KOS consistency proof and
// fails if the receiver's choice bits were inconsistent.
func (s *IKNPSender) Send(n int, check bool) ([]Label, error) {
	result, err := s.extend(n)
	if err != nil {
		return nil, err
	}
	if !check {
		return result, nil
	}
	extra, err := s.extend(checkOTs)
	if err != nil {
		return nil, err
	}

	var seed Label
	var ld LabelData
	if err := s.io.ReceiveLabel(&seed, &ld); err != nil {
		return nil, err
	}
	chiPrg, err := newPrg(seed)
	if err != nil {
		return nil, err
	}

	q0, q1 := checksum(chiPrg, result, extra)

	var x, t0, t1 Label
	if err := s.io.ReceiveLabel(&x, &ld); err != nil {
		return nil, err
	}
	if err := s.io.ReceiveLabel(&t0, &ld); err != nil {
		return nil, err
	}
	if err := s.io.ReceiveLabel(&t1, &ld); err != nil {
		return nil, err
	}
	r0, r1 := mul128(x, s.Delta)
	q0.Xor(r0)
	q1.Xor(r1)

	if !q0.Equal(t0) || !q1.Equal(t1) {
		return nil, fmt.Errorf("OT extension check failed")
	}
	return result, nil
}

func (s *IKNPSender) extend(n int) ([]Label, error) {
	result := make([]Label, n)

	var t [chunkSize]byte
	for ofs := 0; ofs < n; {
		// The receiver sends K columns of byteRows bytes.
		u, err := s.io.ReceiveData()
		if err != nil {
			return nil, err
		}
		if len(u) == 0 || len(u)%K != 0 || len(u) > chunkSize {
			return nil, fmt.Errorf("invalid chunk size: %v", len(u))
		}
		byteRows := len(u) / K

		for i := 0; i < K; i++ {
			col := t[i*byteRows : (i+1)*byteRows]
			prg(s.g[i], col)
			if s.Delta.Bit(i) == 1 {
				xor(col, u[i*byteRows:])
			}
		}
		transpose(result[ofs:], t[:], byteRows)

		ofs += byteRows * 8
	}
	return result, nil
}

// IKNPReceiver implements the correlated OT receiver.
type IKNPReceiver struct {
	io   IO
	rand io.Reader
	g0   [K]cipher.Stream
	g1   [K]cipher.Stream
}

// NewIKNPReceiver creates a new receiver. The base OT must be
// initialized as a sender.
func NewIKNPReceiver(base OT, io IO, rand io.Reader) (*IKNPReceiver, error) {
	var wires [K]Wire
	for i := 0; i < K; i++ {
		var err error
		wires[i].L0, err = NewLabel(rand)
		if err != nil {
			return nil, err
		}
		wires[i].L1, err = NewLabel(rand)
		if err != nil {
			return nil, err
		}
	}
	if err := base.Send(wires[:]); err != nil {
		return nil, err
	}

	r := &IKNPReceiver{
		io:   io,
		rand: rand,
	}
	for i := 0; i < K; i++ {
		var err error
		r.g0[i], err = newPrg(wires[i].L0)
		if err != nil {
			return nil, err
		}
		r.g1[i], err = newPrg(wires[i].L1)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Receive extends len(b) correlated OTs with the choice bits b. The
// result labels implement the correlation: result[i] = q[i] ⊕
// b[i]·Delta. If check is set, the receiver sends the KOS consistency
// proof of its choice bits. The function panics if b and result have
// different lengths.
func (r *IKNPReceiver) Receive(b []bool, result []Label, check bool) error {
	if len(b) != len(result) {
		panic("len(b) != len(result)")
	}
	if err := r.extend(b, result); err != nil {
		return err
	}
	if !check {
		return nil
	}

	// Random choice bits masking the real ones.
	mask := make([]bool, checkOTs)
	for i := 0; i < checkOTs; i += K {
		l, err := NewLabel(r.rand)
		if err != nil {
			return err
		}
		for j := 0; j < K; j++ {
			mask[i+j] = l.Bit(j) == 1
		}
	}
	extra := make([]Label, checkOTs)
	if err := r.extend(mask, extra); err != nil {
		return err
	}

	seed, err := NewLabel(r.rand)
	if err != nil {
		return err
	}
	var ld LabelData
	if err := r.io.SendLabel(seed, &ld); err != nil {
		return err
	}
	chiPrg, err := newPrg(seed)
	if err != nil {
		return err
	}

	var x Label
	var chi [1024]Label
	var t0, t1 Label

	sum := func(bits []bool, labels []Label) {
		for i := 0; i < len(bits); i += len(chi) {
			count := len(bits) - i
			if count > len(chi) {
				count = len(chi)
			}
			prgLabels(chiPrg, chi[:count])
			r0, r1 := vectorInnPrdtSumNoRed(chi[:count], labels[i:i+count])
			t0.Xor(r0)
			t1.Xor(r1)
			for j := 0; j < count; j++ {
				if bits[i+j] {
					x.Xor(chi[j])
				}
			}
		}
	}
	sum(b, result)
	sum(mask, extra)

	if err := r.io.SendLabel(x, &ld); err != nil {
		return err
	}
	if err := r.io.SendLabel(t0, &ld); err != nil {
		return err
	}
	if err := r.io.SendLabel(t1, &ld); err != nil {
		return err
	}
	return r.io.Flush()
}

func (r *IKNPReceiver) extend(b []bool, result []Label) error {
	bbuf := make([]byte, (len(b)+7)/8)
	for i, f := range b {
		if f {
			bbuf[i/8] |= 1 << (i % 8)
		}
	}

	var t, u [chunkSize]byte
	var tmp [chunkByteRows]byte

	for ofs := 0; ofs < len(b); {
		rows := len(b) - ofs
		if rows > chunkRows {
			rows = chunkRows
		}
		byteRows := (rows + 7) / 8

		for i := 0; i < K; i++ {
			col := t[i*byteRows : (i+1)*byteRows]
			prg(r.g0[i], col)
			prg(r.g1[i], tmp[:byteRows])

			xor(tmp[:byteRows], col)
			xor(tmp[:byteRows], bbuf[ofs/8:])
			copy(u[i*byteRows:], tmp[:byteRows])
		}
		if err := r.io.SendData(u[:byteRows*K]); err != nil {
			return err
		}
		transpose(result[ofs:], t[:], byteRows)

		ofs += rows
	}
	return r.io.Flush()
}

// checksum computes the KOS checksum Σ chi[i]·q[i] over the result
// and extra labels.
func checksum(chiPrg cipher.Stream, result, extra []Label) (Label, Label) {
	var q0, q1 Label
	var chi [1024]Label

	for _, labels := range [][]Label{result, extra} {
		for i := 0; i < len(labels); i += len(chi) {
			count := len(labels) - i
			if count > len(chi) {
				count = len(chi)
			}
			prgLabels(chiPrg, chi[:count])
			r0, r1 := vectorInnPrdtSumNoRed(chi[:count], labels[i:i+count])
			q0.Xor(r0)
			q1.Xor(r1)
		}
	}
	return q0, q1
}

func newPrg(key Label) (cipher.Stream, error) {
	var ld LabelData
	block, err := aes.NewCipher(key.Bytes(&ld))
	if err != nil {
		return nil, err
	}
	var iv [16]byte
	return cipher.NewCTR(block, iv[:]), nil
}

func prg(c cipher.Stream, buf []byte) {
	// Clear buffer as it is shared between different caller's
	// iterations.
	for i := 0; i < len(buf); i++ {
		buf[i] = 0
	}
	c.XORKeyStream(buf, buf)
}

func prgLabels(c cipher.Stream, labels []Label) {
	var buf [16]byte
	for i := range labels {
		prg(c, buf[:])
		labels[i].SetBytes(buf[:])
	}
}

// transpose creates labels from the K columns of w bytes in buf.
func transpose(l []Label, buf []byte, w int) {
	end := w * 8
	if end > len(l) {
		end = len(l)
	}
	for i := 0; i < end; i++ {
		row := i / 8
		bit := i % 8
		var label Label
		for j := 0; j < K; j++ {
			label.SetBit(j, uint((buf[j*w+row]>>bit)&1))
		}
		l[i] = label
	}
}
