package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
)

func main() {
	ctx := shutdownContext(context.Background(), slog.Default())

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, errVerifyMismatch) {
			os.Exit(1)
		}

		exitOnError(err)
	}
}
