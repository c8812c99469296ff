//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package share

import (
	"io"

	"golang.org/x/crypto/chacha20"
)

const bitBufSize = 64

// BitSource implements a ChaCha20 stream of random bits and bytes.
type BitSource struct {
	c   *chacha20.Cipher
	buf [bitBufSize]byte
	pos int
}

// NewBitSource creates a new bit source seeded from rand.
func NewBitSource(rand io.Reader) (*BitSource, error) {
	var key [chacha20.KeySize]byte
	if _, err := io.ReadFull(rand, key[:]); err != nil {
		return nil, err
	}
	return NewSeededBitSource(key[:])
}

// NewSeededBitSource creates a deterministic bit source from the
// 32-byte seed.
func NewSeededBitSource(seed []byte) (*BitSource, error) {
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed, nonce[:])
	if err != nil {
		return nil, err
	}
	return &BitSource{
		c:   c,
		pos: bitBufSize * 8,
	}, nil
}

// Read implements io.Reader and fills p with random bytes.
func (s *BitSource) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	s.c.XORKeyStream(p, p)
	return len(p), nil
}

// Bit returns a random bit.
func (s *BitSource) Bit() bool {
	if s.pos >= len(s.buf)*8 {
		s.Read(s.buf[:])
		s.pos = 0
	}
	bit := (s.buf[s.pos/8]>>(s.pos%8))&1 == 1
	s.pos++
	return bit
}

// Bits returns n random bits.
func (s *BitSource) Bits(n int) []bool {
	result := make([]bool, n)
	for i := range result {
		result[i] = s.Bit()
	}
	return result
}
