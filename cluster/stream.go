// SPDX-License-Identifier: MIT

package cluster

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Frame tags.
const (
	tagBroadcast byte = iota + 1
	tagResult
	tagFailure
	tagAbort
)

// maxFrame bounds a frame payload read from a peer.
const maxFrame = 1 << 30

// Link is the coordinator's pipe pair to one worker rank.
// R carries frames from the worker, W frames to it.
type Link struct {
	R io.Reader
	W io.Writer
}

type frameConn struct {
	r  *bufio.Reader
	w  io.Writer
	mu sync.Mutex

	closers []io.Closer
}

func newFrameConn(r io.Reader, w io.Writer) *frameConn {
	fc := &frameConn{r: bufio.NewReader(r), w: w}
	if c, ok := w.(io.Closer); ok {
		fc.closers = append(fc.closers, c)
	}
	if c, ok := r.(io.Closer); ok {
		fc.closers = append(fc.closers, c)
	}

	return fc
}

func (fc *frameConn) write(tag byte, payload []byte) error {
	if len(payload) > maxFrame {
		return fmt.Errorf("frame of %d bytes: %w", len(payload), ErrProtocol)
	}
	var hdr [5]byte
	hdr[0] = tag
	binary.LittleEndian.PutUint32(hdr[1:], uint32(len(payload)))

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if _, err := fc.w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := fc.w.Write(payload)

	return err
}

func (fc *frameConn) read() (byte, []byte, error) {
	var hdr [5]byte
	if _, err := io.ReadFull(fc.r, hdr[:]); err != nil {
		return 0, nil, err
	}
	n := binary.LittleEndian.Uint32(hdr[1:])
	if n > maxFrame {
		return 0, nil, fmt.Errorf("frame of %d bytes: %w", n, ErrProtocol)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(fc.r, payload); err != nil {
		return 0, nil, err
	}

	return hdr[0], payload, nil
}

type frame struct {
	tag     byte
	payload []byte
	err     error
}

// readCtx reads one frame or gives up when ctx ends. The reader goroutine
// finishes once the stream delivers or is closed.
func (fc *frameConn) readCtx(ctx context.Context) frame {
	ch := make(chan frame, 1)
	go func() {
		tag, p, err := fc.read()
		ch <- frame{tag: tag, payload: p, err: err}
	}()
	select {
	case f := <-ch:
		return f
	case <-ctx.Done():
		return frame{err: ctx.Err()}
	}
}

func (fc *frameConn) close() error {
	var errs []error
	for _, c := range fc.closers {
		errs = append(errs, c.Close())
	}

	return errors.Join(errs...)
}

// streamComm is a worker rank talking to rank 0 over one stream pair.
type streamComm struct {
	rank, size int
	fc         *frameConn
}

// NewStreamCommunicator returns the endpoint of worker rank (1 ≤ rank < size)
// reading frames from r and writing frames to w, typically stdin and stdout
// of a process started by SpawnWorld.
func NewStreamCommunicator(rank, size int, r io.Reader, w io.Writer) (Communicator, error) {
	if size < 2 || rank < 1 || rank >= size {
		return nil, fmt.Errorf("NewStreamCommunicator(rank %d, size %d): %w", rank, size, ErrProtocol)
	}

	return &streamComm{rank: rank, size: size, fc: newFrameConn(r, w)}, nil
}

func (c *streamComm) Rank() int { return c.rank }
func (c *streamComm) Size() int { return c.size }

func (c *streamComm) Broadcast(ctx context.Context, _ []byte) ([]byte, error) {
	f := c.fc.readCtx(ctx)
	if f.err != nil {
		return nil, rankError(0, fmt.Errorf("broadcast: %w", f.err))
	}
	switch f.tag {
	case tagBroadcast:
		return f.payload, nil
	case tagAbort:
		return nil, rankError(0, decodeFailure(f.payload))
	default:
		return nil, fmt.Errorf("Broadcast: tag %d: %w", f.tag, ErrProtocol)
	}
}

func (c *streamComm) Gather(_ context.Context, payload []byte) ([][]byte, error) {
	if err := c.fc.write(tagResult, payload); err != nil {
		return nil, fmt.Errorf("Gather: %w", err)
	}

	return nil, nil
}

func (c *streamComm) Fail(_ context.Context, err error) error {
	return c.fc.write(tagFailure, encodeFailure(err))
}

func (c *streamComm) Close() error { return c.fc.close() }

// rootComm is rank 0 holding one link per worker rank.
type rootComm struct {
	links []*frameConn // index rank-1
}

// NewRootCommunicator returns the rank-0 endpoint for len(links)+1 ranks;
// links[i] connects worker rank i+1.
func NewRootCommunicator(links []Link) Communicator {
	c := &rootComm{links: make([]*frameConn, len(links))}
	for i, l := range links {
		c.links[i] = newFrameConn(l.R, l.W)
	}

	return c
}

func (c *rootComm) Rank() int { return 0 }
func (c *rootComm) Size() int { return len(c.links) + 1 }

func (c *rootComm) Broadcast(_ context.Context, payload []byte) ([]byte, error) {
	for i, fc := range c.links {
		if err := fc.write(tagBroadcast, payload); err != nil {
			return nil, rankError(i+1, fmt.Errorf("broadcast: %w", err))
		}
	}

	return clone(payload), nil
}

// Gather reads one frame per worker concurrently and returns on the first
// failure without waiting for the remaining ranks.
func (c *rootComm) Gather(ctx context.Context, payload []byte) ([][]byte, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		rank    int
		payload []byte
		err     error
	}
	results := make(chan result, len(c.links))
	for i, fc := range c.links {
		go func(rank int, fc *frameConn) {
			f := fc.readCtx(ctx)
			switch {
			case f.err != nil:
				results <- result{rank: rank, err: fmt.Errorf("gather: %w", f.err)}
			case f.tag == tagResult:
				results <- result{rank: rank, payload: f.payload}
			case f.tag == tagFailure:
				results <- result{rank: rank, err: decodeFailure(f.payload)}
			default:
				results <- result{rank: rank, err: fmt.Errorf("gather: tag %d: %w", f.tag, ErrProtocol)}
			}
		}(i+1, fc)
	}

	out := make([][]byte, c.Size())
	out[0] = clone(payload)
	for range c.links {
		r := <-results
		if r.err != nil {
			return nil, rankError(r.rank, r.err)
		}
		out[r.rank] = r.payload
	}

	return out, nil
}

// Fail sends an abort frame to every worker; write errors are ignored since
// the run is already failing.
func (c *rootComm) Fail(_ context.Context, err error) error {
	msg := encodeFailure(err)
	for _, fc := range c.links {
		_ = fc.write(tagAbort, msg)
	}

	return nil
}

func (c *rootComm) Close() error {
	var errs []error
	for _, fc := range c.links {
		errs = append(errs, fc.close())
	}

	return errors.Join(errs...)
}
