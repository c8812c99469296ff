//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/markkurossi/text/superscript"
	"go.uber.org/zap"
)

const (
	dialRetryDelay   = 2 * time.Second
	handshakeMagic   = 0x54696e72
	handshakeVersion = 1
)

// HandshakeTimeout limits how long an inbound connection may take to
// send its handshake.
var HandshakeTimeout = 10 * time.Second

// Network implements the TCP mesh between the parties. Each pair of
// parties shares one connection: the party with the smaller ID dials
// and the party with the larger ID accepts.
type Network struct {
	ID       int
	log      *zap.SugaredLogger
	m        sync.Mutex
	c        *sync.Cond
	peers    map[int]*Conn
	listener net.Listener
	closed   bool
}

// NewNetwork creates a new peer-to-peer network listening at addr.
func NewNetwork(addr string, id int, log *zap.SugaredLogger) (
	*Network, error) {

	if id < 0 || id > 0xffff {
		return nil, fmt.Errorf("invalid party ID %d", id)
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	nw := &Network{
		ID:       id,
		log:      log.With("party", superscript.Itoa(id)),
		peers:    make(map[int]*Conn),
		listener: listener,
	}
	nw.c = sync.NewCond(&nw.m)
	go nw.acceptLoop()
	return nw, nil
}

// Addr returns the network's listener address.
func (nw *Network) Addr() net.Addr {
	return nw.listener.Addr()
}

// Close closes the network and all peer connections.
func (nw *Network) Close() error {
	nw.m.Lock()
	nw.closed = true
	peers := nw.peers
	nw.peers = make(map[int]*Conn)
	nw.c.Broadcast()
	nw.m.Unlock()

	err := nw.listener.Close()
	for _, conn := range peers {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// AddPeer connects to the peer id at addr. The function retries
// until the connection succeeds or the context is done.
func (nw *Network) AddPeer(ctx context.Context, addr string, id int) error {
	if id == nw.ID {
		return fmt.Errorf("cannot add self %d as peer", id)
	}
	var d net.Dialer
	for {
		nw.m.Lock()
		_, ok := nw.peers[id]
		nw.m.Unlock()
		if ok {
			return nil
		}

		nw.log.Debugf("connecting to peer %d at %s", id, addr)
		nc, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			nw.log.Debugf("connect to %s failed, retrying in %s: %s",
				addr, dialRetryDelay, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(dialRetryDelay):
			}
			continue
		}
		conn := NewConn(nc)
		if err := sendHandshake(conn, nw.ID); err != nil {
			conn.Close()
			return err
		}
		return nw.newPeer(conn, id)
	}
}

// Wait waits until the network has connections to all n-1 peers and
// returns the connections indexed by party ID. The entry for this
// party is nil.
func (nw *Network) Wait(ctx context.Context, n int) ([]*Conn, error) {
	stop := context.AfterFunc(ctx, func() {
		nw.m.Lock()
		nw.c.Broadcast()
		nw.m.Unlock()
	})
	defer stop()

	nw.m.Lock()
	defer nw.m.Unlock()

	for len(nw.peers) < n-1 {
		if nw.closed {
			return nil, fmt.Errorf("network closed")
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		nw.c.Wait()
	}
	result := make([]*Conn, n)
	for id, conn := range nw.peers {
		if id < 0 || id >= n {
			return nil, fmt.Errorf("invalid peer ID %v: expected [0...%v[",
				id, n)
		}
		result[id] = conn
	}
	return result, nil
}

// Stats returns the I/O stats from the network.
func (nw *Network) Stats() IOStats {
	nw.m.Lock()
	defer nw.m.Unlock()

	result := NewIOStats()
	for _, conn := range nw.peers {
		result = result.Add(conn.Stats)
	}
	return result
}

func (nw *Network) acceptLoop() {
	for {
		nc, err := nw.listener.Accept()
		if err != nil {
			nw.log.Debugf("accept failed: %s", err)
			return
		}
		go nw.accept(nc)
	}
}

func (nw *Network) accept(nc net.Conn) {
	conn := NewConn(nc)

	nc.SetReadDeadline(time.Now().Add(HandshakeTimeout))
	id, err := receiveHandshake(conn)
	if err == nil {
		err = nc.SetReadDeadline(time.Time{})
	}
	if err != nil {
		nw.log.Warnf("inbound connection from %s: %s", nc.RemoteAddr(), err)
		conn.Close()
		return
	}
	if err := nw.newPeer(conn, id); err != nil {
		nw.log.Warnf("inbound connection from %s: %s", nc.RemoteAddr(), err)
	}
}

func sendHandshake(conn *Conn, id int) error {
	if err := conn.SendUint32(handshakeMagic); err != nil {
		return err
	}
	if err := conn.SendByte(handshakeVersion); err != nil {
		return err
	}
	if err := conn.SendUint16(id); err != nil {
		return err
	}
	return conn.Flush()
}

func receiveHandshake(conn *Conn) (int, error) {
	magic, err := conn.ReceiveUint32()
	if err != nil {
		return 0, err
	}
	if magic != handshakeMagic {
		return 0, fmt.Errorf("invalid handshake %x", magic)
	}
	version, err := conn.ReceiveByte()
	if err != nil {
		return 0, err
	}
	if version != handshakeVersion {
		return 0, fmt.Errorf("unsupported version %d", version)
	}
	return conn.ReceiveUint16()
}

func (nw *Network) newPeer(conn *Conn, id int) error {
	nw.m.Lock()
	defer nw.m.Unlock()

	if nw.closed {
		conn.Close()
		return fmt.Errorf("network closed")
	}
	if _, ok := nw.peers[id]; ok || id == nw.ID {
		conn.Close()
		return fmt.Errorf("peer %d already connected", id)
	}
	nw.peers[id] = conn
	nw.c.Broadcast()
	nw.log.Infof("peer %s connected", superscript.Itoa(id))

	return nil
}
