package main

import (
	"context"
	"mirrorbalance/cmd"
	"mirrorbalance/internal/logger"
	"os"
)

func main() {
	if err := cmd.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}
