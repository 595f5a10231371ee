package cmd

import (
	"github.com/huanfeng/updategen/internal/i18n"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// applyCommandLocalization updates command and flag descriptions after i18n is initialized.
func applyCommandLocalization() {
	// Root command metadata and flags.
	localizeCommand(rootCmd, "root", true)
	localizeFlags(rootCmd.PersistentFlags(), map[string]string{
		"config":        "flags.config",
		"source-root":   "flags.sourceRoot",
		"templates-dir": "flags.templatesDir",
		"recent-length": "flags.recentLength",
		"lang":          "flags.lang",
		"verbose":       "flags.verbose",
		"log-file":      "flags.logFile",
		"no-color":      "flags.noColor",
	})

	// Command descriptions.
	localizeCommand(createCmd, "create", false)
	localizeCommand(createProductCmd, "createProduct", false)
	localizeCommand(createVersionCmd, "createVersion", false)
	localizeCommand(listCmd, "list", false)
	localizeCommand(addCmd, "add", true)
	localizeCommand(replaceCmd, "replace", true)
	localizeCommand(deleteCmd, "delete", false)
	localizeCommand(refreshCmd, "refresh", false)
	localizeCommand(infoCmd, "info", false)
	localizeCommand(verifyCmd, "verify", true)
	localizeCommand(exportCmd, "export", false)
	localizeCommand(initCmd, "init", false)
	localizeCommand(versionCmd, "version", false)

	// Flags shared by several commands.
	for _, c := range []*cobra.Command{createProductCmd, createVersionCmd} {
		localizeFlags(c.Flags(), map[string]string{
			"name": "flags.create.name",
			"dir":  "flags.create.dir",
		})
	}
	for _, c := range []*cobra.Command{listCmd, addCmd, replaceCmd, deleteCmd, refreshCmd, infoCmd, verifyCmd, exportCmd} {
		localizeFlags(c.Flags(), map[string]string{
			"product": "flags.product",
			"yes":     "flags.yes",
		})
	}
	for _, c := range []*cobra.Command{addCmd, replaceCmd} {
		localizeFlags(c.Flags(), map[string]string{"input": "flags.input"})
	}
	localizeFlags(deleteCmd.Flags(), map[string]string{"code": "flags.delete.code"})
	localizeFlags(infoCmd.Flags(), map[string]string{
		"code":   "flags.info.code",
		"format": "flags.info.format",
	})
	localizeFlags(verifyCmd.Flags(), map[string]string{
		"fix":    "flags.verify.fix",
		"quiet":  "flags.verify.quiet",
		"report": "flags.verify.report",
	})
	localizeFlags(exportCmd.Flags(), map[string]string{
		"format": "flags.export.format",
		"output": "flags.export.output",
		"fields": "flags.export.fields",
	})
	localizeFlags(initCmd.Flags(), map[string]string{
		"force":  "flags.init.force",
		"output": "flags.init.output",
	})
	localizeFlags(versionCmd.Flags(), map[string]string{"json": "flags.version.json"})
}

func localizeCommand(c *cobra.Command, key string, withLong bool) {
	c.Short = i18n.T("cmd." + key + ".short")
	if withLong {
		c.Long = i18n.T("cmd." + key + ".long")
	}
}

func localizeFlags(flags *pflag.FlagSet, ids map[string]string) {
	for name, id := range ids {
		if flag := flags.Lookup(name); flag != nil {
			flag.Usage = i18n.T(id)
		}
	}
}
