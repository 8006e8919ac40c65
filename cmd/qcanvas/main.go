// Command qcanvas optimizes quantum circuits and lowers them to OpenQASM or
// PennyLane programs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/qcanvas/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return
	}
	if !cli.IsReported(err) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
