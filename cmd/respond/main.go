// SPDX-License-Identifier: MIT

// Command respond evaluates sum-over-states response functions of a quantum
// system over a frequency range, distributed across worker ranks.
//
// Usage:
//
//	respond run       --config respond.yaml [--workers N] [--mode local|process]
//	respond solve     H --energies E --states PSI
//	respond potential POSITIONS OUT
//	respond epsilon   --omega W --eigenvalues L --eigenvectors U
//	respond loss      --eigenvalues L --eigenvectors U --positions P --q "(qx,qy,qz)"
//	respond config    (print the effective configuration)
//
// Worker ranks of the process mode run the hidden "respond worker"
// subcommand; they talk to rank 0 over stdin and stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "respond:", err)
		stop()
		os.Exit(1)
	}
}
