// SPDX-License-Identifier: MIT

// Package cluster runs the response computation as an SPMD job: every rank
// executes Run, rank 0 coordinates.
//
// Ranks exchange byte payloads only, through a Communicator:
//
//	– Broadcast: rank 0's payload reaches every rank (the input package).
//	– Gather:    every rank's payload reaches rank 0 in rank order (samples).
//	– Fail:      a rank reports a local failure; rank 0 aborts the run.
//
// Two transports exist. NewLocalWorld wires ranks inside one process over
// channels (one goroutine per rank, see Simulate). The stream transport
// carries length-prefixed frames over pipes and backs the one-process-per-
// rank mode started by SpawnWorld.
//
// There are no retries and no partial results: the first failing rank
// aborts the whole run with a *RankError.
package cluster

import (
	"context"
	"fmt"
	"sync"
)

// Communicator is one rank's endpoint.
type Communicator interface {
	// Rank is this endpoint's index in [0, Size).
	Rank() int
	// Size is the number of ranks.
	Size() int
	// Broadcast sends payload from rank 0 to all ranks and returns it on
	// every rank. Non-root callers pass nil.
	Broadcast(ctx context.Context, payload []byte) ([]byte, error)
	// Gather delivers every rank's payload to rank 0, indexed by rank.
	// Non-root ranks get nil.
	Gather(ctx context.Context, payload []byte) ([][]byte, error)
	// Fail reports err to the coordinator. On rank 0 it aborts every rank
	// still waiting for a broadcast.
	Fail(ctx context.Context, err error) error
	// Close releases the endpoint.
	Close() error
}

type message struct {
	rank    int
	payload []byte
	failed  bool
}

// localWorld is the shared state of in-process ranks.
type localWorld struct {
	size   int
	bcast  []chan []byte
	gather chan message

	abortOnce sync.Once
	aborted   chan struct{}
	abortMsg  []byte
}

// NewLocalWorld returns size connected in-process communicators, index = rank.
func NewLocalWorld(size int) ([]Communicator, error) {
	if size < 1 {
		return nil, fmt.Errorf("NewLocalWorld(%d): size must be positive: %w", size, ErrProtocol)
	}
	w := &localWorld{
		size:    size,
		bcast:   make([]chan []byte, size),
		gather:  make(chan message, size),
		aborted: make(chan struct{}),
	}
	out := make([]Communicator, size)
	for r := range out {
		w.bcast[r] = make(chan []byte, 1)
		out[r] = &localComm{w: w, rank: r}
	}

	return out, nil
}

type localComm struct {
	w      *localWorld
	rank   int
	mu     sync.Mutex
	closed bool
}

func (c *localComm) Rank() int { return c.rank }
func (c *localComm) Size() int { return c.w.size }

func (c *localComm) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

func clone(b []byte) []byte { return append([]byte(nil), b...) }

func (c *localComm) Broadcast(ctx context.Context, payload []byte) ([]byte, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	if c.rank == 0 {
		for r := 1; r < c.w.size; r++ {
			select {
			case c.w.bcast[r] <- clone(payload):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		return clone(payload), nil
	}

	select {
	case p := <-c.w.bcast[c.rank]:
		return p, nil
	case <-c.w.aborted:
		return nil, rankError(0, decodeFailure(c.w.abortMsg))
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *localComm) Gather(ctx context.Context, payload []byte) ([][]byte, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	if c.rank != 0 {
		select {
		case c.w.gather <- message{rank: c.rank, payload: clone(payload)}:
			return nil, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	out := make([][]byte, c.w.size)
	seen := make([]bool, c.w.size)
	out[0] = clone(payload)
	for got := 1; got < c.w.size; {
		select {
		case m := <-c.w.gather:
			if m.failed {
				return nil, rankError(m.rank, decodeFailure(m.payload))
			}
			if seen[m.rank] {
				return nil, fmt.Errorf("Gather: rank %d sent twice: %w", m.rank, ErrProtocol)
			}
			seen[m.rank] = true
			out[m.rank] = m.payload
			got++
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return out, nil
}

func (c *localComm) Fail(ctx context.Context, err error) error {
	if c.rank == 0 {
		c.w.abortOnce.Do(func() {
			c.w.abortMsg = encodeFailure(err)
			close(c.w.aborted)
		})

		return nil
	}

	select {
	case c.w.gather <- message{rank: c.rank, payload: encodeFailure(err), failed: true}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *localComm) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true

	return nil
}
