//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package party implements the party's view of the computation: the
// network group, the MAC check and the per-thread context the
// preprocessing binds to.
package party

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/markkurossi/text/superscript"
	"github.com/markkurossi/tinier/p2p"
	"go.uber.org/zap"
)

// Group implements the network group of the parties. The Conns are
// indexed by party ID and the entry for this party is nil.
type Group struct {
	ID    int
	Conns []*p2p.Conn
	Log   *zap.SugaredLogger
}

// NewGroup creates a new group for the party id.
func NewGroup(id int, conns []*p2p.Conn, log *zap.SugaredLogger) (
	*Group, error) {

	if id < 0 || id >= len(conns) {
		return nil, fmt.Errorf("invalid party ID %v: expected [0...%v[",
			id, len(conns))
	}
	for i, conn := range conns {
		if (i == id) != (conn == nil) {
			return nil, fmt.Errorf("invalid connection for party %v", i)
		}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Group{
		ID:    id,
		Conns: conns,
		Log:   log.With("party", superscript.Itoa(id)),
	}, nil
}

func (g *Group) String() string {
	return fmt.Sprintf("P%s/%d", superscript.Itoa(g.ID), len(g.Conns))
}

// NumPlayers returns the number of parties in the group.
func (g *Group) NumPlayers() int {
	return len(g.Conns)
}

// Peers returns the IDs of the other parties in ascending order.
func (g *Group) Peers() []int {
	result := make([]int, 0, len(g.Conns)-1)
	for i := range g.Conns {
		if i != g.ID {
			result = append(result, i)
		}
	}
	return result
}

// Stats returns the sum of the I/O stats of the peer connections.
func (g *Group) Stats() p2p.IOStats {
	result := p2p.NewIOStats()
	for _, conn := range g.Conns {
		if conn != nil {
			result = result.Add(conn.Stats)
		}
	}
	return result
}

// Close closes all peer connections.
func (g *Group) Close() error {
	var result error
	for _, conn := range g.Conns {
		if conn == nil {
			continue
		}
		if err := conn.Close(); err != nil && result == nil {
			result = err
		}
	}
	return result
}

// Exchange sends msg to all peers and returns the messages of all
// parties indexed by party ID. For each pair of parties, the one with
// the smaller ID sends first.
func Exchange[T any](g *Group, msg T) ([]T, error) {
	data, err := cbor.Marshal(msg)
	if err != nil {
		return nil, err
	}
	result := make([]T, len(g.Conns))
	result[g.ID] = msg

	for _, peer := range g.Peers() {
		conn := g.Conns[peer]
		if g.ID < peer {
			if err := sendMsg(conn, data); err != nil {
				return nil, err
			}
			if err := receiveMsg(conn, &result[peer]); err != nil {
				return nil, err
			}
		} else {
			if err := receiveMsg(conn, &result[peer]); err != nil {
				return nil, err
			}
			if err := sendMsg(conn, data); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

func sendMsg(conn *p2p.Conn, data []byte) error {
	if err := conn.SendData(data); err != nil {
		return err
	}
	return conn.Flush()
}

func receiveMsg(conn *p2p.Conn, v any) error {
	data, err := conn.ReceiveData()
	if err != nil {
		return err
	}
	if err := cbor.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	return nil
}
