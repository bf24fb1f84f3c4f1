// sorteo analyzes lottery draw histories and generates ranked
// combinations through a genetic optimizer, an ensemble vote, and an
// adaptive weight learner.
package main

import (
	"os"

	"github.com/drawlab/sorteo/cmd/sorteo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
