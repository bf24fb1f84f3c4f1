package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/drawlab/sorteo/internal/adapters/bbolt"
	"github.com/drawlab/sorteo/internal/adapters/history"
	"github.com/drawlab/sorteo/internal/config"
	"github.com/drawlab/sorteo/internal/domain/draw"
	"github.com/drawlab/sorteo/internal/domain/engine"
)

var (
	cfgFile     string
	dbPath      string
	historyFile string
)

var rootCmd = &cobra.Command{
	Use:   "sorteo",
	Short: "sorteo — lottery draw analysis and prediction",
	Long:  "Feature extraction, genetic optimization, and an adaptive ensemble vote over real draw histories.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFile, "Path to sorteo.yaml")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Weight store path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&historyFile, "history", "", "History CSV path (overrides config dir lookup)")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
}

// runtime bundles the objects every command needs.
type runtime struct {
	cfg    config.Config
	store  *bbolt.Store
	engine *engine.Engine
}

func openRuntime() (*runtime, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	store, err := bbolt.NewStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open weight store: %w", err)
	}
	eng := engine.New(store, engine.Config{
		Genetic: cfg.GeneticOptions(),
		Learner: cfg.LearnerOptions(),
	})
	return &runtime{cfg: cfg, store: store, engine: eng}, nil
}

func (rt *runtime) Close() {
	_ = rt.store.Close()
}

// historyPath resolves where a game's draw archive lives.
func (rt *runtime) historyPath(game draw.Game) string {
	if historyFile != "" {
		return historyFile
	}
	return filepath.Join(rt.cfg.HistoryDir, game.Key+".csv")
}

func (rt *runtime) loadHistory(game draw.Game) (draw.History, error) {
	path := rt.historyPath(game)
	hist, err := history.Load(path, game)
	if err != nil {
		return nil, fmt.Errorf("load %s history: %w", game.Key, err)
	}
	return hist, nil
}

func gameFromFlag(key string) (draw.Game, error) {
	game, err := draw.GameByKey(key)
	if err != nil {
		return draw.Game{}, fmt.Errorf("%w (try 'sorteo games')", err)
	}
	return game, nil
}
