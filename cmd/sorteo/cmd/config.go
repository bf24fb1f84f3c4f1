package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/drawlab/sorteo/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	source := cfgFile
	if _, err := os.Stat(cfgFile); err != nil {
		source = "defaults (no config file)"
	}
	dbAbs, _ := filepath.Abs(cfg.DBPath)

	fmt.Printf("%s⚡ sorteo config%s\n", colorBold, colorReset)
	fmt.Printf("  Source:     %s\n", source)
	fmt.Printf("  DB:         %s\n", dbAbs)
	fmt.Printf("  Histories:  %s\n", cfg.HistoryDir)
	fmt.Printf("  HTTP:       %s\n", cfg.HTTPAddr)

	g := cfg.GeneticOptions()
	fmt.Printf("  Genetic:    pop %d-%d │ %d generations │ crossover %.2f\n",
		orInt(g.PopulationMin, 80), orInt(g.PopulationMax, 200), orInt(g.Generations, 40), orFloat(g.CrossoverRate, 0.85))

	printWeights("strategy priors", cfg.StrategyPriors)
	return nil
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func orFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}
