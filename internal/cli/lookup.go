package cli

import (
	"github.com/spf13/cobra"

	"brainrot-feed/internal/app"
)

var lookupOpts app.LookupOptions

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Query a feed once and print the JSON result",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Lookup(cmd.Context(), lookupOpts, cmd.OutOrStdout())
	},
}

func init() {
	lookupCmd.Flags().StringVar(&lookupOpts.Feed, "feed", "10mplus", "Feed name")
	lookupCmd.Flags().StringVar(&lookupOpts.MoreThan, "morethan", "", "Only accept rates strictly above this value")
	lookupCmd.Flags().StringVar(&lookupOpts.Whitelisted, "whitelisted", "", "Only accept names containing this keyword")
}
