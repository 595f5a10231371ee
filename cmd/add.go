package cmd

import (
	"fmt"

	"github.com/huanfeng/updategen/internal/i18n"
	"github.com/huanfeng/updategen/pkg/repo"
	"github.com/huanfeng/updategen/pkg/service"
	"github.com/spf13/cobra"
)

var (
	versionProduct string
	versionInput   string
	assumeYes      bool
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a version record from a file",
	Long: `Add a version record read from a JSON file. Adding a code lower than
the current latest asks for confirmation; an existing code is refused.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAddVersion(cmd, false)
	},
}

var replaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Add or replace a version record from a file",
	Long: `Store a version record read from a JSON file. When its code already
exists the stored record is replaced after confirmation.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAddVersion(cmd, true)
	},
}

func runAddVersion(cmd *cobra.Command, replaceable bool) error {
	info, err := repo.ReadVersionInfoFile(versionInput)
	if err != nil {
		return err
	}
	svc, err := openService(versionProduct)
	if err != nil {
		return err
	}

	confirmer := newConfirmer(cmd, assumeYes)
	res, err := svc.AddVersion(info, replaceable, confirmer.oldVersion, confirmer.replace)
	if confirmer.err != nil {
		return confirmer.err
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	data := map[string]interface{}{"Name": info.VersionName, "Code": info.VersionCode}
	switch res.Outcome {
	case service.Added:
		fmt.Fprintln(out, "✓ "+i18n.T("version.added", data))
	case service.Replaced:
		fmt.Fprintln(out, "✓ "+i18n.T("version.replaced", data))
	default:
		fmt.Fprintln(out, i18n.T("operation.cancelled"))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(replaceCmd)

	for _, c := range []*cobra.Command{addCmd, replaceCmd} {
		c.Flags().StringVarP(&versionProduct, "product", "p", "", "product to change")
		c.Flags().StringVarP(&versionInput, "input", "i", "", "version record file (JSON)")
		c.Flags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every confirmation")
		_ = c.MarkFlagRequired("product")
		_ = c.MarkFlagRequired("input")
	}
}
