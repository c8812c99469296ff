//
// pipe.go
//
// Copyright (c) 2023-2026 Markku Rossi
//
// All rights reserved.

package ot

import (
	"fmt"
	"io"
)

var (
	_ IO = &Pipe{}
)

const pipeMaxData = 64 * 1024 * 1024

// Pipe implements the IO interface with in-memory io.Pipe. The pipe
// is unbuffered: each send blocks until the peer receives the data.
type Pipe struct {
	hdr [4]byte
	r   *io.PipeReader
	w   *io.PipeWriter
}

// NewPipe creates a new in-memory pipe.
func NewPipe() (*Pipe, *Pipe) {
	ar, aw := io.Pipe()
	br, bw := io.Pipe()

	return &Pipe{
			r: ar,
			w: bw,
		}, &Pipe{
			r: br,
			w: aw,
		}
}

// SendData sends binary data.
func (p *Pipe) SendData(val []byte) error {
	if err := p.SendUint32(len(val)); err != nil {
		return err
	}
	_, err := p.w.Write(val)
	return err
}

// SendUint32 sends an uint32 value.
func (p *Pipe) SendUint32(val int) error {
	var buf [4]byte
	bo.PutUint32(buf[:], uint32(val))
	_, err := p.w.Write(buf[:])
	return err
}

// SendLabel sends a label.
func (p *Pipe) SendLabel(val Label, data *LabelData) error {
	_, err := p.w.Write(val.Bytes(data))
	return err
}

// Flush flushed any pending data in the connection.
func (p *Pipe) Flush() error {
	return nil
}

// Drain consumes all input from the pipe.
func (p *Pipe) Drain() error {
	_, err := io.Copy(io.Discard, p.r)
	return err
}

// Close closes the pipe.
func (p *Pipe) Close() error {
	return p.w.Close()
}

// ReceiveData receives binary data.
func (p *Pipe) ReceiveData() ([]byte, error) {
	l, err := p.ReceiveUint32()
	if err != nil {
		return nil, err
	}
	if l > pipeMaxData {
		return nil, fmt.Errorf("pipe data too long: %d > %d", l, pipeMaxData)
	}
	buf := make([]byte, l)
	if _, err := io.ReadFull(p.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReceiveUint32 receives an uint32 value.
func (p *Pipe) ReceiveUint32() (int, error) {
	if _, err := io.ReadFull(p.r, p.hdr[:]); err != nil {
		return 0, err
	}
	return int(bo.Uint32(p.hdr[:])), nil
}

// ReceiveLabel receives a label.
func (p *Pipe) ReceiveLabel(val *Label, data *LabelData) error {
	if _, err := io.ReadFull(p.r, data[:]); err != nil {
		return err
	}
	val.SetData(data)
	return nil
}
