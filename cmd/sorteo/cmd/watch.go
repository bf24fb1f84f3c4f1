package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/drawlab/sorteo/internal/adapters/watch"
	"github.com/drawlab/sorteo/internal/domain/backtest"
)

var watchGame string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Retrain automatically when the history file changes",
	Long:  "Watches the game's history CSV and reruns the training replay whenever new draws land, so the learned weights track the archive without manual retraining.",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchGame, "game", "g", "primitiva", "Game key")
}

func runWatch(cmd *cobra.Command, args []string) error {
	game, err := gameFromFlag(watchGame)
	if err != nil {
		return err
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	path := rt.historyPath(game)
	retrain := func(changed string) {
		hist, err := rt.loadHistory(game)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s✗ %v%s\n", colorYellow, err, colorReset)
			return
		}
		result, err := backtest.Run(rt.engine.Adapter(), game, hist, rt.cfg.BacktestOptions())
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s✗ %v%s\n", colorYellow, err, colorReset)
			return
		}
		if err := backtest.Apply(rt.engine.Adapter(), result); err != nil {
			fmt.Fprintf(os.Stderr, "  %s✗ %v%s\n", colorYellow, err, colorReset)
			return
		}
		fmt.Printf("  %s✓ retrained%s │ %d draws │ consensus %.3f\n",
			colorGreen, colorReset, result.Draws, result.Score)
	}

	watcher, err := watch.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if err := watcher.Watch(path, retrain); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	fmt.Printf("%s⚡ watching%s %s (ctrl-c to stop)\n", colorBold, colorReset, path)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	fmt.Println("stopped")
	return nil
}
