package main

import (
	"os"

	"github.com/orbitalarena/alldomainsim/cmd/simctl/cmd"
	"github.com/orbitalarena/alldomainsim/pkg/logger"
)

func main() {
	if err := cmd.Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
