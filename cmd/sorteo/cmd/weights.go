package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var weightsGame string

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show the learned weights for a game",
	RunE:  runWeights,
}

func init() {
	weightsCmd.Flags().StringVarP(&weightsGame, "game", "g", "primitiva", "Game key")
}

func runWeights(cmd *cobra.Command, args []string) error {
	game, err := gameFromFlag(weightsGame)
	if err != nil {
		return err
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	a := rt.engine.Adapter()
	state := a.TrainingState(game.Key)

	fmt.Printf("%s⚡ %s weights%s\n", colorBold, game.Key, colorReset)
	printWeights("features", a.FeatureWeights(game.Key))
	printWeights("strategies", a.StrategyWeights(game.Key))

	memory := a.SuccessMemory(game.Key)
	if len(memory) > 0 {
		nums := make([]int, 0, len(memory))
		for n := range memory {
			nums = append(nums, n)
		}
		sort.Slice(nums, func(i, j int) bool {
			if memory[nums[i]] != memory[nums[j]] {
				return memory[nums[i]] > memory[nums[j]]
			}
			return nums[i] < nums[j]
		})
		if len(nums) > 10 {
			nums = nums[:10]
		}
		fmt.Printf("  %ssuccess memory%s\n", colorBold, colorReset)
		for _, n := range nums {
			fmt.Printf("    %02d  %.3f\n", n, memory[n])
		}
	}

	if state.Events == 0 {
		fmt.Printf("  %suntrained (uniform defaults)%s\n", colorGray, colorReset)
		return nil
	}
	fmt.Printf("  Training: %d events │ best %.3f │ %s\n",
		state.Events, state.BestScore, time.Unix(state.UpdatedAt, 0).Format("2006-01-02 15:04"))
	return nil
}
