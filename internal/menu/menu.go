package menu

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huanfeng/updategen/internal/errors"
	"github.com/huanfeng/updategen/internal/i18n"
)

// Menu renders numbered choices and reads answers through a Prompter
type Menu struct {
	prompter Prompter
	out      io.Writer
	styles   Styles
}

// New creates a menu writing to out
func New(prompter Prompter, out io.Writer, styles Styles) *Menu {
	return &Menu{prompter: prompter, out: out, styles: styles}
}

// Divider prints a separator line
func (m *Menu) Divider() {
	fmt.Fprintln(m.out, m.styles.Muted(strings.Repeat("-", 50)))
	fmt.Fprintln(m.out)
}

// Choose lists sections numbered from 1 with otherwise as 0 and returns the
// index picked, or -1 for otherwise. Invalid input re-prompts.
func (m *Menu) Choose(title string, sections []string, otherwise string) (int, error) {
	m.Divider()
	fmt.Fprintln(m.out, m.styles.Title(title))

	width := len(strconv.Itoa(len(sections)))
	for i, section := range sections {
		fmt.Fprintf(m.out, "%*d -> %s\n", width, i+1, section)
	}
	fmt.Fprintf(m.out, "%*d -> %s\n", width, 0, otherwise)
	fmt.Fprintln(m.out)

	for {
		input, err := m.prompter.PromptString(i18n.T("menu.input") + " ")
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintln(m.out, m.styles.Error(i18n.T("menu.choose.invalid")))
			continue
		}
		if n < 0 || n > len(sections) {
			fmt.Fprintln(m.out, m.styles.Error(i18n.T("menu.choose.outOfRange")))
			continue
		}
		fmt.Fprintln(m.out)
		return n - 1, nil
	}
}

// NewName asks for a product or template name. validate rejects names
// that clash; ok is false when the name was refused.
func (m *Menu) NewName(title string, validate func(string) error) (name string, ok bool, err error) {
	fmt.Fprintln(m.out, title)
	name, err = m.prompter.PromptString(i18n.T("menu.input") + " ")
	if err != nil {
		return "", false, err
	}
	if verr := validate(name); verr != nil {
		m.Problem(verr)
		return "", false, nil
	}
	return name, true, nil
}

// VersionCode asks for a version code. validate rejects unknown codes; ok is
// false when the input was refused.
func (m *Menu) VersionCode(title string, validate func(int64) error) (code int64, ok bool, err error) {
	fmt.Fprintln(m.out, title)
	input, err := m.prompter.PromptString(i18n.T("menu.versionCode.input") + " ")
	if err != nil {
		return 0, false, err
	}
	code, parsed := parseVersionCode(input)
	if !parsed {
		m.Problem(errors.NewInvalidInputError("NOT_A_VERSION_CODE",
			i18n.T("menu.versionCode.invalid", map[string]interface{}{"Input": input})))
		return 0, false, nil
	}
	if verr := validate(code); verr != nil {
		m.Problem(verr)
		return 0, false, nil
	}
	return code, true, nil
}

// YesOrNo asks a confirmation that defaults to no
func (m *Menu) YesOrNo(message string) (bool, error) {
	return m.prompter.PromptConfirm(message, false)
}

// Success prints a positive outcome
func (m *Menu) Success(msg string) {
	fmt.Fprintln(m.out, m.styles.Success(msg))
}

// Info prints a neutral line
func (m *Menu) Info(msg string) {
	fmt.Fprintln(m.out, msg)
}

// Problem prints an error without ending the session
func (m *Menu) Problem(err error) {
	fmt.Fprintln(m.out, m.styles.Error(i18n.T("error.prefix", map[string]interface{}{"Message": err.Error()})))
}

// ShowVersions prints codes in rows of ten right-aligned columns
func (m *Menu) ShowVersions(codes []int64) {
	WriteVersions(m.out, codes)
}

// WriteVersions prints codes in rows of ten right-aligned columns
func WriteVersions(w io.Writer, codes []int64) {
	if len(codes) == 0 {
		fmt.Fprintln(w, i18n.T("versions.none"))
		return
	}

	width := 0
	for _, code := range codes {
		if n := len(strconv.FormatInt(code, 10)); n > width {
			width = n
		}
	}

	fmt.Fprintln(w, i18n.T("versions.header"))
	const cols = 10
	for i := 0; i < len(codes); i += cols {
		end := i + cols
		if end > len(codes) {
			end = len(codes)
		}
		cells := make([]string, 0, cols)
		for _, code := range codes[i:end] {
			cells = append(cells, fmt.Sprintf("%*d", width, code))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	fmt.Fprintln(w, i18n.T("list.total", map[string]interface{}{"Total": len(codes)}))
}

// WriteProducts prints product names with a total
func WriteProducts(w io.Writer, products []string) {
	if len(products) == 0 {
		fmt.Fprintln(w, i18n.T("products.none"))
		return
	}
	fmt.Fprintln(w, i18n.T("products.header"))
	for _, p := range products {
		fmt.Fprintf(w, "  %s\n", p)
	}
	fmt.Fprintln(w, i18n.T("list.total", map[string]interface{}{"Total": len(products)}))
}
