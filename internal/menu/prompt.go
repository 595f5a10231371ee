package menu

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/huanfeng/updategen/internal/i18n"
	"golang.org/x/term"
)

// Prompter reads answers from a person
type Prompter interface {
	// PromptString prints message and returns the trimmed line typed
	PromptString(message string) (string, error)
	// PromptConfirm asks a yes/no question, re-asking on anything else.
	// An empty answer returns def.
	PromptConfirm(message string, def bool) (bool, error)
}

// ConsolePrompter implements Prompter over a reader and writer
type ConsolePrompter struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewConsolePrompter creates a prompter; nil arguments mean stdin and stdout
func NewConsolePrompter(in io.Reader, out io.Writer) *ConsolePrompter {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return &ConsolePrompter{reader: bufio.NewReader(in), out: out}
}

// PromptString prints message and reads one line. A final line without a
// newline is still returned; io.EOF is only reported when nothing was read.
func (p *ConsolePrompter) PromptString(message string) (string, error) {
	fmt.Fprint(p.out, message)
	input, err := p.reader.ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// PromptConfirm asks until the answer is y, yes, n or no
func (p *ConsolePrompter) PromptConfirm(message string, def bool) (bool, error) {
	hint := "(y/N)"
	if def {
		hint = "(Y/n)"
	}
	for {
		input, err := p.PromptString(fmt.Sprintf("%s %s: ", message, hint))
		if err != nil {
			return false, err
		}
		switch strings.ToLower(input) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, i18n.T("menu.confirm.invalid"))
	}
}

// IsInteractive reports whether stdin is a terminal
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// isTerminalWriter reports whether w is a terminal
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// parseVersionCode accepts only non-negative decimal integers
func parseVersionCode(s string) (int64, bool) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, false
	}
	code, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return code, true
}
