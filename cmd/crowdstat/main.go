// Package main is the crowdstat command-line entry point.
package main

import (
	"os"

	"github.com/leapstack-labs/crowdstat/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
