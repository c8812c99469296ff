//
// co.go
//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//
// Chou Orlandi OT - The Simplest Protocol for Oblivious Transfer.
//  - https://eprint.iacr.org/2015/267.pdf

/*

This implementation is derived from the EMP Toolkit's co.h
(https://github.com/emp-toolkit/emp-ot/blob/master/emp-ot/co.h)
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
	"crypto/elliptic"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"io"
	"math/big"
)

var (
	bo    = binary.BigEndian
	_  OT = &CO{}
)

// CO implements CO OT as the OT interface.
type CO struct {
	curve  elliptic.Curve
	rand   io.Reader
	hash   hash.Hash
	digest []byte
	io     IO
}

// NewCO creates a new CO OT implementing the OT interface. The rand
// argument is the source of the OT secrets.
func NewCO(rand io.Reader) *CO {
	return &CO{
		curve:  elliptic.P256(),
		rand:   rand,
		hash:   sha256.New(),
		digest: make([]byte, 0, sha256.Size),
	}
}

// InitSender initializes the OT sender.
func (co *CO) InitSender(io IO) error {
	co.io = io
	if err := SendString(io, co.curve.Params().Name); err != nil {
		return err
	}
	return io.Flush()
}

// InitReceiver initializes the OT receiver.
func (co *CO) InitReceiver(io IO) error {
	co.io = io

	name, err := ReceiveString(io)
	if err != nil {
		return err
	}
	if name != co.curve.Params().Name {
		return fmt.Errorf("invalid curve %s, expected %s",
			name, co.curve.Params().Name)
	}
	return nil
}

// Send sends the wire labels with OT.
func (co *CO) Send(wires []Wire) error {
	params := co.curve.Params()

	// a <- Zp, A = G^a
	a, err := randScalar(co.rand, params.N)
	if err != nil {
		return err
	}
	aBytes := a.Bytes()
	Ax, Ay := co.curve.ScalarBaseMult(aBytes)

	if err := co.io.SendData(Ax.Bytes()); err != nil {
		return err
	}
	if err := co.io.SendData(Ay.Bytes()); err != nil {
		return err
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	// AaInv = (A^a)^-1 = {x, -y}
	Aax, Aay := co.curve.ScalarMult(Ax, Ay, aBytes)
	AaInvx := new(big.Int).Set(Aax)
	AaInvy := new(big.Int).Sub(params.P, Aay)

	type point struct {
		x, y *big.Int
	}
	k0 := make([]point, len(wires))
	k1 := make([]point, len(wires))

	for i := range wires {
		Bx, err := ReceiveBigInt(co.io)
		if err != nil {
			return err
		}
		By, err := ReceiveBigInt(co.io)
		if err != nil {
			return err
		}
		if !co.curve.IsOnCurve(Bx, By) {
			return fmt.Errorf("CO: receiver point %d not on curve", i)
		}
		Bax, Bay := co.curve.ScalarMult(Bx, By, aBytes)
		k0[i] = point{Bax, Bay}
		k1[i].x, k1[i].y = co.curve.Add(Bax, Bay, AaInvx, AaInvy)
	}

	var ld LabelData
	for i := range wires {
		wires[i].L0.GetData(&ld)
		e0 := xor(kdf(co.hash, k0[i].x, k0[i].y, uint64(i), co.digest[:0]),
			ld[:])
		if err := co.io.SendData(e0); err != nil {
			return err
		}
		wires[i].L1.GetData(&ld)
		e1 := xor(kdf(co.hash, k1[i].x, k1[i].y, uint64(i), co.digest[:0]),
			ld[:])
		if err := co.io.SendData(e1); err != nil {
			return err
		}
	}
	return co.io.Flush()
}

// Receive receives the wire labels with OT based on the flag values.
func (co *CO) Receive(flags []bool, result []Label) error {
	params := co.curve.Params()

	Ax, err := ReceiveBigInt(co.io)
	if err != nil {
		return err
	}
	Ay, err := ReceiveBigInt(co.io)
	if err != nil {
		return err
	}
	if !co.curve.IsOnCurve(Ax, Ay) {
		return fmt.Errorf("CO: sender point not on curve")
	}

	bs := make([][]byte, len(flags))
	for i, flag := range flags {
		// b <- Zp, B = G^b or A*G^b
		b, err := randScalar(co.rand, params.N)
		if err != nil {
			return err
		}
		bs[i] = b.Bytes()

		Bx, By := co.curve.ScalarBaseMult(bs[i])
		if flag {
			Bx, By = co.curve.Add(Bx, By, Ax, Ay)
		}
		if err := co.io.SendData(Bx.Bytes()); err != nil {
			return err
		}
		if err := co.io.SendData(By.Bytes()); err != nil {
			return err
		}
	}
	if err := co.io.Flush(); err != nil {
		return err
	}

	for i, flag := range flags {
		Asx, Asy := co.curve.ScalarMult(Ax, Ay, bs[i])

		e0, err := co.io.ReceiveData()
		if err != nil {
			return err
		}
		e1, err := co.io.ReceiveData()
		if err != nil {
			return err
		}
		e := e0
		if flag {
			e = e1
		}
		data := xor(kdf(co.hash, Asx, Asy, uint64(i), co.digest[:0]), e)
		if len(data) < len(LabelData{}) {
			return fmt.Errorf("CO: short message %d: %d", i, len(data))
		}
		result[i].SetBytes(data)
	}
	return nil
}

func randScalar(rand io.Reader, n *big.Int) (*big.Int, error) {
	buf := make([]byte, (n.BitLen()+7)/8+8)
	if _, err := io.ReadFull(rand, buf); err != nil {
		return nil, err
	}
	k := new(big.Int).SetBytes(buf)
	k.Mod(k, n)
	if k.Sign() == 0 {
		k.SetInt64(1)
	}
	return k, nil
}

func kdf(hash hash.Hash, x, y *big.Int, id uint64, digest []byte) []byte {
	hash.Reset()
	hash.Write(x.Bytes())
	hash.Write(y.Bytes())

	var tmp [8]byte
	bo.PutUint64(tmp[:], id)
	hash.Write(tmp[:])

	return hash.Sum(digest)
}

func xor(a, b []byte) []byte {
	l := len(a)
	if len(b) < l {
		l = len(b)
	}
	for i := 0; i < l; i++ {
		a[i] ^= b[i]
	}
	return a[:l]
}
