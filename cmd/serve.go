package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/portfolio-stats/internal/httpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the estimates as JSON over HTTP",
	Long: `Starts an HTTP server answering GET /v1/stats/{user}, /v1/commits/{user},
/v1/featured/{user} and /v1/profile/{user} for the site's pages.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := setup(cmd)
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server := httpserver.NewServer(addr, a.estimator, a.logger)
		if err := server.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to run http server on %s: %v\n", addr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "localhost:9000", "Address the HTTP server listens on")
}
