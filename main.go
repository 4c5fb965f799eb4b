// main is the entry point for the rideintegrity CLI.
package main

import (
	"github.com/huangsam/rideintegrity/cmd"
	"github.com/huangsam/rideintegrity/internal/contract"
	"github.com/huangsam/rideintegrity/internal/runstore"
)

func main() {
	defer runstore.CloseStores()
	if err := cmd.Execute(); err != nil {
		runstore.CloseStores()
		contract.LogFatal("rideintegrity failed", err)
	}
}
