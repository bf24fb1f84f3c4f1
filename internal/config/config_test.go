package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sorteo.db", cfg.DBPath)
	assert.Equal(t, "data", cfg.HistoryDir)
	assert.Equal(t, ":8347", cfg.HTTPAddr)

	sum := 0.0
	for _, v := range cfg.StrategyPriors {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9, "default priors must sum to one")
	assert.InDelta(t, 0.22, cfg.StrategyPriors["genetic"], 1e-12)
}

func TestLoad_OverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sorteo.yaml")
	content := `
db_path: /var/lib/sorteo/weights.db
genetic:
  generations: 25
  union_crossover: true
learner:
  learning_rate: 0.2
backtest:
  window: 40
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/sorteo/weights.db", cfg.DBPath)
	assert.Equal(t, "data", cfg.HistoryDir, "unset fields keep defaults")
	assert.Equal(t, 25, cfg.Genetic.Generations)
	assert.True(t, cfg.Genetic.UnionCrossover)
	assert.InDelta(t, 0.2, cfg.Learner.LearningRate, 1e-12)
	assert.Equal(t, 40, cfg.Backtest.Window)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sorteo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db_path: [unterminated"), 0644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestConfig_OptionConversions(t *testing.T) {
	cfg := Default()
	cfg.Genetic.Generations = 12
	cfg.Learner.MemoryDecay = 0.8
	cfg.Backtest.Window = 30

	g := cfg.GeneticOptions()
	assert.Equal(t, 12, g.Generations)
	assert.Zero(t, g.PopulationMin, "zero fields defer to optimizer defaults")

	l := cfg.LearnerOptions()
	assert.InDelta(t, 0.8, l.MemoryDecay, 1e-12)
	assert.Equal(t, cfg.StrategyPriors, l.StrategyPriors)

	b := cfg.BacktestOptions()
	assert.Equal(t, 30, b.Window)
}
