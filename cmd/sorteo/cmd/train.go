package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drawlab/sorteo/internal/domain/backtest"
)

var (
	trainGame   string
	trainWindow int
	trainDryRun bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Replay recent draws and update the learned weights",
	Long:  "Walks forward through the history window, predicting each draw from only the draws before it, then feeds the per-feature and per-strategy results back into the weight store.",
	RunE:  runTrain,
}

func init() {
	trainCmd.Flags().StringVarP(&trainGame, "game", "g", "primitiva", "Game key")
	trainCmd.Flags().IntVarP(&trainWindow, "window", "w", 0, "Draws to replay (default from config)")
	trainCmd.Flags().BoolVar(&trainDryRun, "dry-run", false, "Report hit rates without updating weights")
}

func runTrain(cmd *cobra.Command, args []string) error {
	game, err := gameFromFlag(trainGame)
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

	cfg := rt.cfg.BacktestOptions()
	if trainWindow > 0 {
		cfg.Window = trainWindow
	}

	result, err := backtest.Run(rt.engine.Adapter(), game, hist, cfg)
	if err != nil {
		return err
	}

	printBacktest(result, game.PerDraw)

	if trainDryRun {
		fmt.Printf("  %sdry run: weights unchanged%s\n", colorGray, colorReset)
		return nil
	}

	if err := backtest.Apply(rt.engine.Adapter(), result); err != nil {
		return fmt.Errorf("apply training result: %w", err)
	}

	state := rt.engine.Adapter().TrainingState(game.Key)
	fmt.Printf("  %s✓ weights updated%s │ %d training events │ best %.3f\n",
		colorGreen, colorReset, state.Events, state.BestScore)
	return nil
}
