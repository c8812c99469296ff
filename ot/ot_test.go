//
// ot_test.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.
//

package ot

import (
	"crypto/rand"
	"fmt"
	"testing"
)

func testOT(sender, receiver OT, t *testing.T) {
	const size int = 64

	wires := make([]Wire, size)
	flags := make([]bool, size)
	labels := make([]Label, size)

	done := make(chan error)

	for i := 0; i < len(wires); i++ {
		var err error
		wires[i].L0, err = NewLabel(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		wires[i].L1, err = NewLabel(rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		flags[i] = i%2 == 0
	}

	pipe, rPipe := NewPipe()

	go func(pipe *Pipe) {
		err := receiver.InitReceiver(pipe)
		if err != nil {
			pipe.Close()
			pipe.Drain()
			done <- err
			return
		}
		err = receiver.Receive(flags, labels)
		if err != nil {
			pipe.Close()
			pipe.Drain()
			done <- err
			return
		}
		for i := 0; i < len(flags); i++ {
			var expected Label
			if flags[i] {
				expected = wires[i].L1
			} else {
				expected = wires[i].L0
			}
			if !labels[i].Equal(expected) {
				done <- fmt.Errorf("label %d mismatch %v %v,%v", i,
					labels[i], wires[i].L0, wires[i].L1)
				return
			}
		}
		done <- nil
	}(rPipe)

	err := sender.InitSender(pipe)
	if err != nil {
		t.Fatalf("InitSender: %v", err)
	}
	err = sender.Send(wires)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	err = <-done
	if err != nil {
		t.Errorf("receiver failed: %v", err)
	}
}

func TestOTCO(t *testing.T) {
	testOT(NewCO(rand.Reader), NewCO(rand.Reader), t)
}

func BenchmarkOTCO(b *testing.B) {
	const batchSize = 128

	wires := make([]Wire, batchSize)
	flags := make([]bool, batchSize)
	labels := make([]Label, batchSize)

	for b.Loop() {
		pipe, rPipe := NewPipe()
		sender := NewCO(rand.Reader)
		receiver := NewCO(rand.Reader)

		done := make(chan error)
		go func() {
			err := receiver.InitReceiver(rPipe)
			if err == nil {
				err = receiver.Receive(flags, labels)
			}
			done <- err
		}()
		if err := sender.InitSender(pipe); err != nil {
			b.Fatal(err)
		}
		if err := sender.Send(wires); err != nil {
			b.Fatal(err)
		}
		if err := <-done; err != nil {
			b.Fatal(err)
		}
	}
}
