package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	predictGame  string
	predictCount int
	predictJSON  bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Generate ranked combinations for a game",
	Long:  "Runs feature extraction, the genetic optimizer, and the ensemble vote over the game's draw history. Identical history and learned state always produce identical output.",
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().StringVarP(&predictGame, "game", "g", "primitiva", "Game key")
	predictCmd.Flags().IntVarP(&predictCount, "count", "n", 3, "Combinations to generate")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "Emit the full report as JSON")
}

func runPredict(cmd *cobra.Command, args []string) error {
	game, err := gameFromFlag(predictGame)
	if err != nil {
		return err
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	hist, err := rt.loadHistory(game)
	if err != nil {
		return err
	}

	report, err := rt.engine.Predict(game, hist, predictCount)
	if err != nil {
		return err
	}

	if predictJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	if report.Mode == "simplified" {
		fmt.Printf("  %s(short history: %d draws, statistical mode only)%s\n",
			colorYellow, report.HistoryLen, colorReset)
	}
	return nil
}
