// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/naka-gawa/portfolio-stats/internal/config"
	"github.com/naka-gawa/portfolio-stats/internal/gateway"
	"github.com/naka-gawa/portfolio-stats/internal/logger"
	"github.com/naka-gawa/portfolio-stats/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "portfolio-stats",
	Short: "A CLI tool to estimate the GitHub statistics shown on a portfolio site.",
	Long: `portfolio-stats estimates the figures a portfolio site displays for a GitHub user:
project count, commit count, technologies and featured repositories.
GitHub being unavailable or rate limited never fails a command; the
figures fall back to defaults instead.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("env-file", ".env", "Path of an optional .env file")
	rootCmd.PersistentFlags().String("heuristics", "", "Path of an optional YAML file overriding the estimation heuristics")
}

// app bundles what every command needs.
type app struct {
	cfg       *config.Config
	logger    *logrus.Logger
	estimator *usecase.Estimator
}

// setup loads the configuration and injects dependencies. Errors here are
// configuration mistakes and end the process.
func setup(cmd *cobra.Command) *app {
	verbose, _ := cmd.Flags().GetBool("verbose")
	envFile, _ := cmd.Flags().GetString("env-file")
	heuristicsFile, _ := cmd.Flags().GetString("heuristics")

	cfg, err := config.Load(envFile, heuristicsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(os.Stderr, cfg.LogLevel, verbose)
	if cfg.Token == "" {
		log.Warnf("%s is not set, requests are anonymous and heavily rate limited", config.TokenEnvVar)
	}

	githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
		Token:      cfg.Token,
		BaseURL:    cfg.APIURL,
		GraphQLURL: cfg.GraphQLURL,
	}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
		os.Exit(1)
	}

	return &app{
		cfg:       cfg,
		logger:    log,
		estimator: usecase.NewEstimator(githubGateway, cfg.Heuristics, log),
	}
}

// user returns the --user flag, or the configured user when it is not set.
func (a *app) user(cmd *cobra.Command) string {
	if user, _ := cmd.Flags().GetString("user"); user != "" {
		return user
	}
	return a.cfg.User
}

// printJSON marshals v into a pretty-printed JSON string on standard output.
func printJSON(v any) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal results to JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(jsonData))
}
