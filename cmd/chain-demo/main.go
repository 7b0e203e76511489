// Package main runs the chain CLI against the in-memory demo repository, for taking
// screenshots or walking through the tool without a throwaway git repository on disk.
package main

import (
	"os"

	"github.com/chainctl/chain/internal/cli"
	_ "github.com/chainctl/chain/internal/demo" // registers runtime.DemoRepoFactory
)

func main() {
	os.Setenv("CHAIN_DEMO", "1")
	rootCmd := cli.NewRootCmd("demo", "none", "unknown")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
