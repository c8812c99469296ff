//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package share

import (
	"crypto/subtle"
	"io"

	"github.com/zeebo/blake3"
)

const commitDomain = "tinier commitment"

// Commitment implements a hash commitment to a value.
type Commitment [32]byte

// Decommitment holds the random nonce opening a commitment.
type Decommitment [32]byte

// Commit commits to data. The function returns the commitment and the
// decommitment nonce.
func Commit(rand io.Reader, data []byte) (Commitment, Decommitment, error) {
	var d Decommitment
	if _, err := io.ReadFull(rand, d[:]); err != nil {
		return Commitment{}, d, err
	}
	return commit(d, data), d, nil
}

// Open verifies that the commitment c opens to data with the
// decommitment d.
func (c Commitment) Open(d Decommitment, data []byte) bool {
	computed := commit(d, data)
	return subtle.ConstantTimeCompare(c[:], computed[:]) == 1
}

func commit(d Decommitment, data []byte) Commitment {
	h := blake3.New()
	h.Write([]byte(commitDomain))
	h.Write(d[:])
	h.Write(data)

	var c Commitment
	if _, err := io.ReadFull(h.Digest(), c[:]); err != nil {
		panic(err)
	}
	return c
}
