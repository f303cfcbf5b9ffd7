package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nguyentantai21042004/lesson-recorder/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	// The first signal cancels ctx; a second one gets the default behavior and exits.
	go func() {
		<-ctx.Done()
		stop()
	}()

	code := cli.Execute(ctx)
	stop()
	os.Exit(code)
}
