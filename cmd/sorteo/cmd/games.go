package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drawlab/sorteo/internal/domain/draw"
)

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List the supported games",
	RunE:  runGames,
}

func runGames(cmd *cobra.Command, args []string) error {
	fmt.Printf("%s⚡ games%s\n", colorBold, colorReset)
	for _, g := range draw.Games() {
		supp := ""
		if g.HasSupplementary() {
			supp = fmt.Sprintf(" + supp 0-%d", g.SuppMax)
		}
		fmt.Printf("  %s%-12s%s %s: %d of 1-%d%s\n",
			colorCyan, g.Key, colorReset, g.Name, g.PerDraw, g.MaxNumber, supp)
	}
	return nil
}
