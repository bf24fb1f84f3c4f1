package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	resetGame  string
	resetForce bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the learned state for a game",
	Long:  "Deletes the feature weights, strategy weights, success memory, and training counters for one game. Other games are untouched.",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().StringVarP(&resetGame, "game", "g", "", "Game key (required)")
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "Skip confirmation prompt")
	_ = resetCmd.MarkFlagRequired("game")
}

func runReset(cmd *cobra.Command, args []string) error {
	game, err := gameFromFlag(resetGame)
	if err != nil {
		return err
	}

	if !resetForce {
		fmt.Printf("This will clear all learned weights for %s. Continue? [y/N] ", game.Key)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("cancelled")
			return nil
		}
	}

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.engine.Adapter().Reset(game.Key); err != nil {
		return fmt.Errorf("reset %s: %w", game.Key, err)
	}
	fmt.Printf("%s✓ %s reset to defaults%s\n", colorGreen, game.Key, colorReset)
	return nil
}
