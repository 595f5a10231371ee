package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/huanfeng/updategen/internal/config"
	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/internal/i18n"
	"github.com/spf13/cobra"
)

var (
	initForce  bool
	initOutput string
)

var initCmd = &cobra.Command{
	Use:         "init",
	Short:       "Write a configuration template and create the working directories",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfigAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		path := initOutput
		if path == "" {
			path = config.FileName
		}

		exists := false
		if _, err := os.Stat(path); err == nil {
			exists = true
		}
		if exists && !initForce {
			return errors.NewAlreadyExistsError("CONFIG_EXISTS",
				i18n.T("cli.init.exists", map[string]interface{}{"Path": path})).
				WithSuggestion(i18n.T("cli.init.suggestForce"))
		}

		if exists {
			fmt.Fprintln(out, "🔄 "+i18n.T("cli.init.overwrite", map[string]interface{}{"Path": path}))
		} else {
			fmt.Fprintln(out, "📝 "+i18n.T("cli.init.create", map[string]interface{}{"Path": path}))
		}
		if err := config.SaveTemplate(path); err != nil {
			return err
		}

		// Relative directories in the template resolve against the folder
		// the configuration lives in.
		defaults := config.Default()
		base := filepath.Dir(path)
		for _, dir := range []string{defaults.SourceRoot, defaults.TemplatesDir} {
			full := filepath.Join(base, dir)
			if err := os.MkdirAll(full, 0755); err != nil {
				return errors.NewFileSystemError(err, "MKDIR_FAILED", "failed to create working directory").
					WithContext("path", full)
			}
		}

		fmt.Fprintln(out, "✅ "+i18n.T("cli.init.done", map[string]interface{}{"Path": path}))
		fmt.Fprintln(out, "\n💡 "+i18n.T("cli.init.next"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration file")
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "", "configuration file to write (default ./updategen.yaml)")
}
