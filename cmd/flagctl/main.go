// Package main provides flagctl, an administration tool that works directly
// on a flags data directory.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := NewOptions(ctx)
	root := NewRootCommand(opts)
	err := root.Execute()
	if cerr := opts.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		printErr(root.ErrOrStderr(), err)
		stop()
		os.Exit(1)
	}
}
