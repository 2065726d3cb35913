package main

import (
	"context"
	"fmt"
	"os"

	"github.com/seal-io/sftpsync/command"
	"github.com/seal-io/sftpsync/utils/signalx"
)

func main() {
	ctx, stop := signalx.Context(context.Background())

	err := command.NewRootCommand().ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
