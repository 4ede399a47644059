// Command pricer values options on binomial, trinomial and finite-difference
// lattices.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lattice-pricer/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
