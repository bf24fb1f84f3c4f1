// Package config loads the optional sorteo.yaml tunables file. Every
// field has a calibrated default, so an absent file is never an error.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/drawlab/sorteo/internal/domain/backtest"
	"github.com/drawlab/sorteo/internal/domain/genetic"
	"github.com/drawlab/sorteo/internal/domain/learner"
)

// DefaultFile is the config file name looked up in the working directory.
const DefaultFile = "sorteo.yaml"

// Config mirrors sorteo.yaml.
type Config struct {
	DBPath     string `yaml:"db_path"`
	HistoryDir string `yaml:"history_dir"`
	HTTPAddr   string `yaml:"http_addr"`

	Genetic  GeneticConfig  `yaml:"genetic"`
	Learner  LearnerConfig  `yaml:"learner"`
	Backtest BacktestConfig `yaml:"backtest"`

	// StrategyPriors seed the ensemble vote before any training.
	StrategyPriors map[string]float64 `yaml:"strategy_priors"`
}

// GeneticConfig holds the evolution tunables.
type GeneticConfig struct {
	PopulationMin   int     `yaml:"population_min"`
	PopulationMax   int     `yaml:"population_max"`
	Generations     int     `yaml:"generations"`
	CrossoverRate   float64 `yaml:"crossover_rate"`
	MutationInitial float64 `yaml:"mutation_initial"`
	MutationFinal   float64 `yaml:"mutation_final"`
	ElitismFraction float64 `yaml:"elitism_fraction"`
	TournamentSize  int     `yaml:"tournament_size"`
	UnionCrossover  bool    `yaml:"union_crossover"`
}

// LearnerConfig holds the adaptive-weight tunables.
type LearnerConfig struct {
	LearningRate float64 `yaml:"learning_rate"`
	Decay        float64 `yaml:"decay"`
	MemoryDecay  float64 `yaml:"memory_decay"`
}

// BacktestConfig holds the walk-forward replay tunables.
type BacktestConfig struct {
	Window int `yaml:"window"`
}

// Default returns the calibrated configuration.
func Default() Config {
	return Config{
		DBPath:     "sorteo.db",
		HistoryDir: "data",
		HTTPAddr:   ":8347",
		StrategyPriors: map[string]float64{
			"genetic":        0.22,
			"highconfidence": 0.18,
			"hotcold":        0.12,
			"equilibrium":    0.12,
			"cycle":          0.10,
			"correlation":    0.10,
			"frequency":      0.08,
			"trend":          0.08,
		},
	}
}

// Load reads path and overlays it on the defaults. A missing file just
// yields the defaults; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// GeneticOptions converts the YAML block into the optimizer's config.
// Zero fields fall through to the optimizer's own defaults.
func (c Config) GeneticOptions() genetic.Config {
	return genetic.Config{
		PopulationMin:   c.Genetic.PopulationMin,
		PopulationMax:   c.Genetic.PopulationMax,
		Generations:     c.Genetic.Generations,
		CrossoverRate:   c.Genetic.CrossoverRate,
		MutationInitial: c.Genetic.MutationInitial,
		MutationFinal:   c.Genetic.MutationFinal,
		ElitismFraction: c.Genetic.ElitismFraction,
		TournamentSize:  c.Genetic.TournamentSize,
		UnionCrossover:  c.Genetic.UnionCrossover,
	}
}

// LearnerOptions converts the YAML block into the learner's config.
func (c Config) LearnerOptions() learner.Config {
	return learner.Config{
		LearningRate:   c.Learner.LearningRate,
		Decay:          c.Learner.Decay,
		MemoryDecay:    c.Learner.MemoryDecay,
		StrategyPriors: c.StrategyPriors,
	}
}

// BacktestOptions converts the YAML block into the backtester's config.
func (c Config) BacktestOptions() backtest.Config {
	return backtest.Config{Window: c.Backtest.Window}
}
