package cmd

import (
	"github.com/huanfeng/updategen/internal/menu"
	"github.com/huanfeng/updategen/pkg/repo"
	"github.com/spf13/cobra"
)

var listProduct string

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"show", "ls"},
	Short:   "List products, or the versions of one product",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if listProduct == "" {
			products, err := repo.ListProducts(appConfig.SourceRoot)
			if err != nil {
				return err
			}
			menu.WriteProducts(out, products)
			return nil
		}

		svc, err := openService(listProduct)
		if err != nil {
			return err
		}
		codes, err := svc.GetVersions()
		if err != nil {
			return err
		}
		menu.WriteVersions(out, codes)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVarP(&listProduct, "product", "p", "", "product whose versions are listed")
}
