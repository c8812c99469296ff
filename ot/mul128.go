//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

// mul128 computes the unreduced carry-less product of a and b. The
// 256-bit result is returned as the low and high labels.
func mul128(a, b Label) (lo, hi Label) {
	// D0 holds the high 64 bits of the label.
	p00lo, p00hi := clmul64(a.D1, b.D1)
	p01lo, p01hi := clmul64(a.D1, b.D0)
	p10lo, p10hi := clmul64(a.D0, b.D1)
	p11lo, p11hi := clmul64(a.D0, b.D0)

	midLo := p01lo ^ p10lo
	midHi := p01hi ^ p10hi

	lo.D1 = p00lo
	lo.D0 = p00hi ^ midLo

	hi.D1 = midHi ^ p11lo
	hi.D0 = p11hi

	return
}
