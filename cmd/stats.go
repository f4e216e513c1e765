package cmd

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Estimates the headline GitHub stats and outputs them as JSON",
	Long: `Estimates the projects, commits, technologies and hackathons figures for a
GitHub user and outputs them in JSON format.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := setup(cmd)
		printJSON(a.estimator.Stats(cmd.Context(), a.user(cmd)))
	},
}

var commitsCmd = &cobra.Command{
	Use:   "commits",
	Short: "Estimates the commit count of a GitHub user",
	Long: `Runs every commit estimation strategy for a GitHub user and outputs each
strategy's figure together with the reconciled total. With --past-year only
the past-year estimate is printed.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := setup(cmd)
		user := a.user(cmd)
		if pastYear, _ := cmd.Flags().GetBool("past-year"); pastYear {
			printJSON(map[string]int{"pastYearCommits": a.estimator.EstimatePastYearCommits(cmd.Context(), user)})
			return
		}
		printJSON(a.estimator.CommitBreakdown(cmd.Context(), user))
	},
}

var featuredCmd = &cobra.Command{
	Use:   "featured",
	Short: "Lists the featured repositories of a GitHub user",
	Long: `Lists the most starred non-fork repositories of a GitHub user. When no
repository can be fetched a curated sample list is printed instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		a := setup(cmd)
		count, _ := cmd.Flags().GetInt("count")
		printJSON(a.estimator.FeaturedRepos(cmd.Context(), a.user(cmd), count))
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Summarises the GitHub profile of a user",
	Run: func(cmd *cobra.Command, args []string) {
		a := setup(cmd)
		printJSON(a.estimator.Profile(cmd.Context(), a.user(cmd)))
	},
}

func init() {
	for _, c := range []*cobra.Command{statsCmd, commitsCmd, featuredCmd, profileCmd} {
		c.Flags().StringP("user", "u", "", "Target GitHub user name (defaults to GITHUB_USER)")
		rootCmd.AddCommand(c)
	}
	commitsCmd.Flags().Bool("past-year", false, "Only print the past-year commit estimate")
	featuredCmd.Flags().IntP("count", "n", 0, "Number of repositories to list (defaults to the heuristics' featured_count)")
}
