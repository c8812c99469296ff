//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"testing"
)

func BenchmarkIKNPSetup(b *testing.B) {
	for i := 0; i < b.N; i++ {
		c0, c1 := NewPipe()
		oti0 := NewCO(rand.Reader)
		oti1 := NewCO(rand.Reader)

		done := make(chan error)
		go func() {
			if err := oti1.InitSender(c1); err != nil {
				done <- err
				return
			}
			_, err := NewIKNPReceiver(oti1, c1, rand.Reader)
			done <- err
		}()

		if err := oti0.InitReceiver(c0); err != nil {
			b.Fatal(err)
		}
		if _, err := NewIKNPSender(oti0, c0, rand.Reader, nil); err != nil {
			b.Fatal(err)
		}
		if err := <-done; err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkIKNPExtend1K(b *testing.B)   { benchmarkIKNPExtend(b, 1000, false) }
func BenchmarkIKNPExtend10K(b *testing.B)  { benchmarkIKNPExtend(b, 10000, false) }
func BenchmarkIKNPExtend100K(b *testing.B) { benchmarkIKNPExtend(b, 100000, false) }

func BenchmarkIKNPExtendChecked10K(b *testing.B) {
	benchmarkIKNPExtend(b, 10000, true)
}

func benchmarkIKNPExtend(b *testing.B, n int, check bool) {
	c0, c1 := NewPipe()
	oti0 := NewCO(rand.Reader)
	oti1 := NewCO(rand.Reader)

	// The receiver services every extension the sender runs.
	done := make(chan error)
	go func() {
		if err := oti1.InitSender(c1); err != nil {
			done <- err
			return
		}
		r, err := NewIKNPReceiver(oti1, c1, rand.Reader)
		if err != nil {
			done <- err
			return
		}
		flags := randomBools(n)
		result := make([]Label, n)
		for i := 0; i < b.N; i++ {
			if err := r.Receive(flags, result, check); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	if err := oti0.InitReceiver(c0); err != nil {
		b.Fatal(err)
	}
	s, err := NewIKNPSender(oti0, c0, rand.Reader, nil)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := s.Send(n, check); err != nil {
			b.Fatal(err)
		}
	}
	if err := <-done; err != nil {
		b.Fatal(err)
	}
}
