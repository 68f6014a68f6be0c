// SPDX-License-Identifier: MIT

package cluster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// ProcessWorld is rank 0 of a job whose worker ranks are child processes.
type ProcessWorld struct {
	Communicator
	cmds []*exec.Cmd
}

// Spawn describes how to start a worker rank. Args receives the rank and
// size and returns the full argument list for Path.
type Spawn struct {
	Path   string
	Args   func(rank, size int) []string
	Stderr io.Writer // worker diagnostics; nil means os.Stderr
	Env    []string  // appended to the parent environment
}

// WorkerArgs is the default Spawn.Args: "<sub...> --rank R --size N".
func WorkerArgs(sub ...string) func(rank, size int) []string {
	return func(rank, size int) []string {
		out := append([]string(nil), sub...)

		return append(out, "--rank", strconv.Itoa(rank), "--size", strconv.Itoa(size))
	}
}

// SpawnWorld starts size-1 worker processes and connects rank 0 to their
// stdin and stdout. On any start failure already started workers are killed.
func SpawnWorld(ctx context.Context, size int, sp Spawn) (*ProcessWorld, error) {
	if size < 1 {
		return nil, fmt.Errorf("SpawnWorld(%d): %w", size, ErrProtocol)
	}
	stderr := sp.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	w := &ProcessWorld{}
	links := make([]Link, 0, size-1)
	for rank := 1; rank < size; rank++ {
		cmd := exec.CommandContext(ctx, sp.Path, sp.Args(rank, size)...)
		cmd.Stderr = stderr
		cmd.Env = append(os.Environ(), sp.Env...)
		in, err := cmd.StdinPipe()
		if err != nil {
			w.kill()

			return nil, rankError(rank, err)
		}
		out, err := cmd.StdoutPipe()
		if err != nil {
			w.kill()

			return nil, rankError(rank, err)
		}
		if err = cmd.Start(); err != nil {
			w.kill()

			return nil, rankError(rank, err)
		}
		w.cmds = append(w.cmds, cmd)
		links = append(links, Link{R: out, W: in})
	}
	w.Communicator = NewRootCommunicator(links)

	return w, nil
}

func (w *ProcessWorld) kill() {
	for _, c := range w.cmds {
		_ = c.Process.Kill()
		_ = c.Wait()
	}
}

// Wait waits for every worker to exit; call it after the run and Close. A
// non-zero exit is reported as a *RankError for that worker.
func (w *ProcessWorld) Wait() error {
	var g errgroup.Group
	for i, c := range w.cmds {
		g.Go(func() error {
			if err := c.Wait(); err != nil {
				var ee *exec.ExitError
				if errors.As(err, &ee) {
					return rankError(i+1, fmt.Errorf("exit status %d", ee.ExitCode()))
				}

				return rankError(i+1, err)
			}

			return nil
		})
	}

	return g.Wait()
}

// Close closes rank 0's pipes, which ends any worker still reading.
func (w *ProcessWorld) Close() error {
	if w.Communicator == nil {
		return nil
	}

	return w.Communicator.Close()
}
