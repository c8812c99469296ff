//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"net"
	"testing"
	"time"
)

func TestNetwork(t *testing.T) {
	const n = 3

	var nets [n]*Network
	for i := 0; i < n; i++ {
		nw, err := NewNetwork("127.0.0.1:0", i, nil)
		if err != nil {
			t.Fatalf("NewNetwork: %v", err)
		}
		defer nw.Close()
		nets[i] = nw
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The smaller ID dials the larger.
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if err := nets[i].AddPeer(ctx, nets[j].Addr().String(), j); err != nil {
				t.Fatalf("AddPeer(%v->%v): %v", i, j, err)
			}
		}
	}

	var conns [n][]*Conn
	for i := 0; i < n; i++ {
		var err error
		conns[i], err = nets[i].Wait(ctx, n)
		if err != nil {
			t.Fatalf("Wait(%v): %v", i, err)
		}
		if conns[i][i] != nil {
			t.Errorf("Wait(%v): own connection set", i)
		}
	}

	go func() {
		conns[0][2].SendUint32(42)
		conns[0][2].Flush()
	}()
	v, err := conns[2][0].ReceiveUint32()
	if err != nil {
		t.Fatalf("ReceiveUint32: %v", err)
	}
	if v != 42 {
		t.Errorf("got %v, expected 42", v)
	}
}

func TestNetworkWaitCancel(t *testing.T) {
	nw, err := NewNetwork("127.0.0.1:0", 0, nil)
	if err != nil {
		t.Fatalf("NewNetwork: %v", err)
	}
	defer nw.Close()

	ctx, cancel := context.WithTimeout(context.Background(),
		50*time.Millisecond)
	defer cancel()

	if _, err := nw.Wait(ctx, 2); err == nil {
		t.Errorf("Wait succeeded without peers")
	}
}

func TestNetworkStalledHandshake(t *testing.T) {
	var nets [2]*Network
	for i := range nets {
		nw, err := NewNetwork("127.0.0.1:0", i, nil)
		if err != nil {
			t.Fatalf("NewNetwork: %v", err)
		}
		defer nw.Close()
		nets[i] = nw
	}

	// Inbound connections that never complete the handshake.
	silent, err := net.Dial("tcp", nets[1].Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer silent.Close()

	bad, err := net.Dial("tcp", nets[1].Addr().String())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer bad.Close()
	if _, err := bad.Write([]byte{0xde, 0xad, 0xbe, 0xef}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := nets[0].AddPeer(ctx, nets[1].Addr().String(), 1); err != nil {
		t.Fatalf("AddPeer: %v", err)
	}
	conns, err := nets[1].Wait(ctx, 2)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if conns[0] == nil {
		t.Errorf("Wait: peer 0 not connected")
	}
}

func TestNetworkInvalidID(t *testing.T) {
	if _, err := NewNetwork("127.0.0.1:0", 0x10000, nil); err == nil {
		t.Errorf("NewNetwork accepted ID 0x10000")
	}
}

func TestHandshake(t *testing.T) {
	c0, c1 := Pipe()
	go sendHandshake(c0, 513)

	id, err := receiveHandshake(c1)
	if err != nil {
		t.Fatalf("receiveHandshake: %v", err)
	}
	if id != 513 {
		t.Errorf("got ID %v, expected 513", id)
	}

	go func() {
		c0.SendUint32(handshakeMagic)
		c0.SendByte(handshakeVersion + 1)
		c0.SendUint16(1)
		c0.Flush()
	}()
	if _, err := receiveHandshake(c1); err == nil {
		t.Errorf("receiveHandshake accepted unsupported version")
	}
}
