package cmd

import (
	"fmt"

	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/internal/i18n"
	"github.com/spf13/cobra"
)

var deleteCode int64

var deleteCmd = &cobra.Command{
	Use:     "delete",
	Aliases: []string{"rm"},
	Short:   "Delete a version record",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if deleteCode < 0 {
			return errors.NewInvalidInputError("NOT_A_VERSION_CODE",
				i18n.T("menu.versionCode.invalid", map[string]interface{}{"Input": deleteCode}))
		}
		svc, err := openService(versionProduct)
		if err != nil {
			return err
		}

		confirmer := newConfirmer(cmd, assumeYes)
		res, err := svc.DeleteVersion(deleteCode, confirmer.delete)
		if confirmer.err != nil {
			return confirmer.err
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.Declined() {
			fmt.Fprintln(out, i18n.T("operation.cancelled"))
			return nil
		}
		fmt.Fprintln(out, "✓ "+i18n.T("version.deleted", map[string]interface{}{
			"Name": res.Info.VersionName,
			"Code": res.Info.VersionCode,
		}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().StringVarP(&versionProduct, "product", "p", "", "product to change")
	deleteCmd.Flags().Int64VarP(&deleteCode, "code", "c", 0, "version code to delete")
	deleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to every confirmation")
	_ = deleteCmd.MarkFlagRequired("product")
	_ = deleteCmd.MarkFlagRequired("code")
}
