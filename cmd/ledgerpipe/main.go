// Package main provides the CLI for the LedgerPipe pipeline engine.
package main

import "github.com/leapstack-labs/ledgerpipe/internal/cli"

func main() {
	cli.Execute()
}
