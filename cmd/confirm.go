package cmd

import (
	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/internal/i18n"
	"github.com/huanfeng/updategen/internal/menu"
	"github.com/huanfeng/updategen/pkg/service"
	"github.com/spf13/cobra"
)

// stdinIsTerminal reports whether confirmations can be asked. Tests
// replace it.
var stdinIsTerminal = menu.IsInteractive

// cliConfirmer answers service decisions for one command run. With --yes
// every decision is yes. Otherwise a terminal is prompted and anything else
// records an error, since nobody is there to answer.
type cliConfirmer struct {
	cmd *cobra.Command
	yes bool
	err error
}

func newConfirmer(cmd *cobra.Command, yes bool) *cliConfirmer {
	return &cliConfirmer{cmd: cmd, yes: yes}
}

func (c *cliConfirmer) ask(message string) bool {
	if c.yes {
		return true
	}
	if c.err != nil {
		return false
	}
	if !stdinIsTerminal() {
		c.err = errors.NewInvalidInputError("CONFIRMATION_REQUIRED", i18n.T("cli.confirm.required")).
			WithContext("question", message).
			WithSuggestion(i18n.T("cli.confirm.suggestYes"))
		return false
	}

	prompter := menu.NewConsolePrompter(c.cmd.InOrStdin(), c.cmd.OutOrStdout())
	ok, err := prompter.PromptConfirm(message, false)
	if err != nil {
		c.err = err
		return false
	}
	return ok
}

func (c *cliConfirmer) oldVersion(ctx service.DecisionContext) bool {
	return c.ask(i18n.T("confirm.oldVersion", map[string]interface{}{
		"Name": ctx.Incoming.VersionName,
		"Code": ctx.Incoming.VersionCode,
	}))
}

func (c *cliConfirmer) replace(ctx service.DecisionContext) bool {
	return c.ask(i18n.T("confirm.replace", map[string]interface{}{
		"OldName": ctx.Existing.VersionName,
		"OldCode": ctx.Existing.VersionCode,
		"NewName": ctx.Incoming.VersionName,
		"NewCode": ctx.Incoming.VersionCode,
	}))
}

func (c *cliConfirmer) delete(ctx service.DecisionContext) bool {
	return c.ask(i18n.T("confirm.delete", map[string]interface{}{
		"Name": ctx.Existing.VersionName,
		"Code": ctx.Existing.VersionCode,
	}))
}
