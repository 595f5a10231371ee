package cmd

import (
	"fmt"

	"github.com/huanfeng/updategen/internal/i18n"
	"github.com/huanfeng/updategen/pkg/repo"
	"github.com/spf13/cobra"
)

var (
	createName string
	createDir  string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a product or a version template",
}

var createProductCmd = &cobra.Command{
	Use:   "product",
	Short: "Create a new product folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root := createDir
		if root == "" {
			root = appConfig.SourceRoot
		}
		if err := repo.CreateProduct(root, createName); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ "+i18n.T("product.created", map[string]interface{}{"Name": createName}))
		return nil
	},
}

var createVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Create a new version template",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := createDir
		if dir == "" {
			dir = appConfig.TemplatesDir
		}
		path, err := repo.NewVersionTemplate(dir, createName)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ "+i18n.T("template.created", map[string]interface{}{"Path": path}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.AddCommand(createProductCmd)
	createCmd.AddCommand(createVersionCmd)

	for _, c := range []*cobra.Command{createProductCmd, createVersionCmd} {
		c.Flags().StringVarP(&createName, "name", "n", "", "name to create")
		c.Flags().StringVarP(&createDir, "dir", "d", "", "parent directory (defaults to the configured one)")
		_ = c.MarkFlagRequired("name")
	}
}
