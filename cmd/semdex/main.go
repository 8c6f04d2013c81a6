// Command semdex indexes local documentation into semantic chunks and
// serves meaning-based search over them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/semdex/internal/adapters/driving/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup, err := cli.InitServices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "semdex: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	if err := cli.Execute(ctx); err != nil {
		os.Exit(1)
	}
}
