// Package styles provides shared lipgloss styles for the command line.
package styles

import (
	"strconv"

	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	HeaderStyle  lipgloss.Style
	DividerStyle lipgloss.Style
	MutedStyle   lipgloss.Style
	IDStyle      lipgloss.Style

	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style

	TaskTextStyle lipgloss.Style
	TaskDoneStyle lipgloss.Style

	ImportanceHighStyle lipgloss.Style
	ImportanceLowStyle  lipgloss.Style

	DeadlineStyle        lipgloss.Style
	DeadlineOverdueStyle lipgloss.Style

	StatusSyncedStyle  lipgloss.Style
	StatusSyncingStyle lipgloss.Style
	StatusDirtyStyle   lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	HeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	DividerStyle = lipgloss.NewStyle().
		Foreground(p.Surface)
	MutedStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	IDStyle = lipgloss.NewStyle().
		Foreground(p.Muted)

	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	WarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error).Bold(true)

	TaskTextStyle = lipgloss.NewStyle().
		Foreground(p.Foreground)
	TaskDoneStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Strikethrough(true)

	ImportanceHighStyle = lipgloss.NewStyle().
		Foreground(p.Error).
		Bold(true)
	ImportanceLowStyle = lipgloss.NewStyle().
		Foreground(p.Muted)

	DeadlineStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	DeadlineOverdueStyle = lipgloss.NewStyle().Foreground(p.Error)

	StatusSyncedStyle = lipgloss.NewStyle().Foreground(p.Success)
	StatusSyncingStyle = lipgloss.NewStyle().Foreground(p.Primary)
	StatusDirtyStyle = lipgloss.NewStyle().Foreground(p.Warning).Bold(true)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

// Swatch renders a colored dot for a #RRGGBB or #RRGGBBAA task color. The
// alpha channel is blended over the theme background. Invalid colors render
// as an empty string.
func Swatch(hex string) string {
	c, ok := BlendedColor(hex)
	if !ok {
		return ""
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(IconSwatch)
}

// BlendedColor resolves a task color to an opaque #rrggbb value.
func BlendedColor(hex string) (string, bool) {
	if len(hex) != 7 && len(hex) != 9 {
		return "", false
	}

	c, err := colorful.Hex(hex[:7])
	if err != nil {
		return "", false
	}
	if len(hex) == 7 {
		return c.Hex(), true
	}

	a, err := strconv.ParseUint(hex[7:], 16, 8)
	if err != nil {
		return "", false
	}

	bg, err := colorful.Hex(string(CurrentPalette.Background))
	if err != nil {
		return c.Hex(), true
	}
	return bg.BlendRgb(c, float64(a)/255).Clamped().Hex(), true
}

func colorHexPtr(c lipgloss.Color) *string {
	cc, err := colorful.Hex(string(c))
	if err != nil {
		return nil
	}
	hex := cc.Hex()
	return &hex
}

// GlamourStyle returns a Glamour style config derived from the active theme.
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig
	p := CurrentPalette

	fg := colorHexPtr(p.Foreground)
	primary := colorHexPtr(p.Primary)
	secondary := colorHexPtr(p.Secondary)
	muted := colorHexPtr(p.Muted)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = primary
	cfg.H2.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Code.Color = secondary
	cfg.Table.Color = fg

	return cfg
}

// FormTheme returns a huh theme matching the active palette.
func FormTheme() *huh.Theme {
	p := CurrentPalette
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(p.Primary)
	t.Focused.Title = t.Focused.Title.Foreground(p.Primary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(p.Muted)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(p.Error)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(p.Error)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(p.Secondary)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(p.Success)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Foreground(p.Background).Background(p.Primary)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())
	t.Blurred.Title = t.Blurred.Title.Foreground(p.Muted).Bold(false)

	return t
}
