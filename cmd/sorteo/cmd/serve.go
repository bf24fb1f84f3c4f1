package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drawlab/sorteo/internal/adapters/web"
	"github.com/drawlab/sorteo/internal/domain/draw"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions over HTTP",
	Long:  "Starts a JSON API: /api/v1/games, /api/v1/predict, /api/v1/weights/{game}, /api/v1/reset/{game}. Histories are re-read per request so a refreshed CSV is picked up immediately.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	addr := rt.cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := web.NewServer(addr, rt.engine, func(game draw.Game) (draw.History, error) {
		return rt.loadHistory(game)
	})

	fmt.Printf("%s⚡ sorteo api%s listening on %s%s%s\n", colorBold, colorReset, colorCyan, addr, colorReset)
	return srv.ListenAndServe()
}
