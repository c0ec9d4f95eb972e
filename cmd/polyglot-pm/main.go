package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/flo-mic/polyglot-pm/internal/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.NewRootCommand(os.Stdout, os.Stderr, cmd.HuhPrompter{}).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
