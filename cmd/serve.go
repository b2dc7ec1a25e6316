package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/clusterflow-cli/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the clustering engine as a JSON HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		if err := c.Validate(); err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" {
			addr = c.ListenAddr
		}
		if !debug {
			gin.SetMode(gin.ReleaseMode)
		}
		opt := server.Options{
			Sweep:       c.SweepOptions(),
			Final:       c.FinalOptions(),
			DefaultKMin: c.KMin,
			DefaultKMax: c.KMax,
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Listening on http://%s/api/v1\n", addr)
		return server.ListenAndServe(ctx, addr, opt)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config listen_addr)")
}
