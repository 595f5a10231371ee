package cmd

import (
	"fmt"

	"github.com/huanfeng/updategen/internal/i18n"
	"github.com/spf13/cobra"
)

var refreshProduct string

var refreshCmd = &cobra.Command{
	Use:       "refresh [all|index|latest]",
	Short:     "Regenerate the derived index and latest files",
	Args:      cobra.MatchAll(cobra.RangeArgs(0, 1), cobra.OnlyValidArgs),
	ValidArgs: []string{"all", "index", "latest"},
	RunE: func(cmd *cobra.Command, args []string) error {
		target := "all"
		if len(args) == 1 {
			target = args[0]
		}

		svc, err := openService(refreshProduct)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if target == "all" || target == "index" {
			if err := svc.RefreshIndex(); err != nil {
				return err
			}
			fmt.Fprintln(out, "✓ "+i18n.T("refresh.index"))
		}
		if target == "all" || target == "latest" {
			if err := svc.RefreshLatest(); err != nil {
				return err
			}
			fmt.Fprintln(out, "✓ "+i18n.T("refresh.latest"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
	refreshCmd.Flags().StringVarP(&refreshProduct, "product", "p", "", "product to refresh")
	_ = refreshCmd.MarkFlagRequired("product")
}
