package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"brainrot-feed/internal/app"
)

var simulateOpts app.SimulateOptions

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "模拟一条命中记录并触发告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateOpts.Name == "" || simulateOpts.Rate == "" || simulateOpts.Locator == "" {
			return errors.New("--name、--rate 与 --locator 必须提供")
		}
		return getApp().SimulateAlert(cmd.Context(), simulateOpts)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateOpts.Feed, "feed", "10mplus", "Feed name")
	simulateCmd.Flags().StringVar(&simulateOpts.Name, "name", "", "Brainrot 名称")
	simulateCmd.Flags().StringVar(&simulateOpts.Rate, "rate", "", "每秒收益文本，例如 $2.1M")
	simulateCmd.Flags().StringVar(&simulateOpts.Locator, "locator", "", "服务器定位信息 (job id)")
}
