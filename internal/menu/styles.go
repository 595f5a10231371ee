package menu

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/huanfeng/updategen/internal/i18n"
	"github.com/huanfeng/updategen/internal/version"
)

var (
	colorAccent  = lipgloss.AdaptiveColor{Light: "25", Dark: "75"}   // blue
	colorSuccess = lipgloss.AdaptiveColor{Light: "28", Dark: "42"}   // green
	colorError   = lipgloss.AdaptiveColor{Light: "160", Dark: "196"} // red
	colorMuted   = lipgloss.AdaptiveColor{Light: "245", Dark: "244"} // gray
)

// Styles decorates menu output. The zero value prints plain text.
type Styles struct {
	enabled bool
	title   lipgloss.Style
	success lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
	banner  lipgloss.Style
}

// NewStyles returns colored styles when color is true and out is a
// terminal, plain ones otherwise.
func NewStyles(out io.Writer, color bool) Styles {
	if !color || !isTerminalWriter(out) {
		return Styles{}
	}
	r := lipgloss.NewRenderer(out)
	return Styles{
		enabled: true,
		title:   r.NewStyle().Bold(true).Foreground(colorAccent),
		success: r.NewStyle().Foreground(colorSuccess),
		err:     r.NewStyle().Foreground(colorError).Bold(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		banner: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 2),
	}
}

func (s Styles) render(style lipgloss.Style, text string) string {
	if !s.enabled {
		return text
	}
	return style.Render(text)
}

// Title renders a menu title
func (s Styles) Title(text string) string { return s.render(s.title, text) }

// Success renders a positive outcome
func (s Styles) Success(text string) string { return s.render(s.success, text) }

// Error renders a problem
func (s Styles) Error(text string) string { return s.render(s.err, text) }

// Muted renders secondary text
func (s Styles) Muted(text string) string { return s.render(s.muted, text) }

// WriteBanner prints the program name, version and website
func WriteBanner(w io.Writer, s Styles) {
	body := fmt.Sprintf("%s\n\n%s\n%s",
		i18n.T("banner.title"),
		i18n.T("banner.version", map[string]interface{}{"Version": version.Short()}),
		i18n.T("banner.website", map[string]interface{}{"Website": version.Website}))

	if s.enabled {
		fmt.Fprintln(w, s.banner.Render(body))
	} else {
		fmt.Fprintln(w, body)
	}
	fmt.Fprintln(w, s.Muted(i18n.T("banner.exitHint")))
	fmt.Fprintln(w)
}
