package cli

import (
	"github.com/spf13/cobra"

	"brainrot-feed/internal/app"
)

var watchOpts app.WatchOptions

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll a feed on an interval and report new sightings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := getApp()
		opts := watchOpts
		// 未显式传参时回落到配置文件中的 watch 段。
		if !cmd.Flags().Changed("feed") && a.Config.Watch.Feed != "" {
			opts.Feed = a.Config.Watch.Feed
		}
		if !cmd.Flags().Changed("morethan") {
			opts.MoreThan = a.Config.Watch.MoreThan
		}
		if !cmd.Flags().Changed("whitelisted") {
			opts.Whitelisted = a.Config.Watch.Whitelisted
		}
		return a.Watch(cmd.Context(), opts)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchOpts.Feed, "feed", "10mplus", "Feed name")
	watchCmd.Flags().DurationVar(&watchOpts.Interval, "interval", 0, "Polling interval (defaults to watch.interval)")
	watchCmd.Flags().StringVar(&watchOpts.MoreThan, "morethan", "", "Only accept rates strictly above this value")
	watchCmd.Flags().StringVar(&watchOpts.Whitelisted, "whitelisted", "", "Only accept names containing this keyword")
}
