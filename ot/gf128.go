//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

// vectorInnPrdtSumNoRed computes the GF(2^128) inner product of
// vectors a and b without modular reduction. It returns the 256-bit
// result as two 128-bit blocks. The vectors must have the same
// length.
func vectorInnPrdtSumNoRed(a, b []Label) (Label, Label) {
	var r1, r2 Label

	for i := range a {
		lo, hi := mul128(a[i], b[i])
		r1.Xor(lo)
		r2.Xor(hi)
	}
	return r1, r2
}

func clmul64(a, b uint64) (lo, hi uint64) {
	for i := 0; i < 64; i++ {
		if (b>>i)&1 != 0 {
			if i == 0 {
				lo ^= a
			} else {
				lo ^= a << i
				hi ^= a >> (64 - i)
			}
		}
	}
	return
}

// gf128Poly holds the low terms x^7 + x^2 + x + 1 of the GF(2^128)
// reduction polynomial.
const gf128Poly = 0x87

// Mul computes the product of a and b in GF(2^128) modulo x^128 + x^7
// + x^2 + x + 1.
func Mul(a, b Label) Label {
	lo, hi := mul128(a, b)

	l0, h0 := clmul64(hi.D1, gf128Poly)
	l1, h1 := clmul64(hi.D0, gf128Poly)
	l2, _ := clmul64(h1, gf128Poly)

	lo.D1 ^= l0 ^ l2
	lo.D0 ^= h0 ^ l1

	return lo
}
