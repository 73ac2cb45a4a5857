package utils

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	CriticalColor = lipgloss.Color("#CC3333") // Dark red
	WarningColor  = lipgloss.Color("#FF8800") // Orange
	GoodColor     = lipgloss.Color("#228B22") // Forest green
	InfoColor     = lipgloss.Color("#4682B4") // Steel blue
	TextColor     = lipgloss.Color("#CCCCCC") // Light gray
	MutedColor    = lipgloss.Color("#888888") // Medium gray
	BorderColor   = lipgloss.Color("#666666") // Dark gray

	StringColor  = lipgloss.Color("#66BB66") // Lighter green
	NumberColor  = lipgloss.Color("#88AACC") // Lighter blue
	KeywordColor = lipgloss.Color("#FFAA44") // Lighter orange
	TypeColor    = lipgloss.Color("#B48EAD") // Purple
)

var (
	CriticalStyle = lipgloss.NewStyle().Foreground(CriticalColor).Bold(true)
	WarningStyle  = lipgloss.NewStyle().Foreground(WarningColor).Bold(true)
	GoodStyle     = lipgloss.NewStyle().Foreground(GoodColor).Bold(true)
	InfoStyle     = lipgloss.NewStyle().Foreground(InfoColor)
	MutedStyle    = lipgloss.NewStyle().Foreground(MutedColor)
	TextStyle     = lipgloss.NewStyle().Foreground(TextColor)

	NameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	TypeStyle    = lipgloss.NewStyle().Foreground(TypeColor).Italic(true)
	StringStyle  = lipgloss.NewStyle().Foreground(StringColor)
	NumberStyle  = lipgloss.NewStyle().Foreground(NumberColor)
	KeywordStyle = lipgloss.NewStyle().Foreground(KeywordColor)
	SourceStyle  = lipgloss.NewStyle().Foreground(MutedColor).Italic(true)
)

var (
	TabActiveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(InfoColor).
			Padding(0, 1).
			Bold(true)

	TabInactiveStyle = lipgloss.NewStyle().
				Foreground(MutedColor).
				Padding(0, 1)

	SelectedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#2a2a2a")).
			Bold(true)
)

var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true).
			Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(lipgloss.Color("#1a1a1a")).
			Padding(0, 1)

	HelpBarStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Padding(0, 1)
)

// ValueStyle picks the style used for a node's value by its type tag
func ValueStyle(typeTag string) lipgloss.Style {
	t := strings.ToLower(typeTag)
	switch {
	case strings.Contains(t, "string"):
		return StringStyle
	case strings.Contains(t, "int"), strings.Contains(t, "float"),
		strings.Contains(t, "complex"), strings.Contains(t, "uintptr"):
		return NumberStyle
	case strings.Contains(t, "bool"), strings.Contains(t, "nil"):
		return KeywordStyle
	case strings.Contains(t, "recursion"):
		return WarningStyle
	default:
		return TextStyle
	}
}

// FormatKeyValue renders an aligned "key: value" line
func FormatKeyValue(key, value string, keyWidth int) string {
	keyStyled := InfoStyle.Width(keyWidth).Render(key + ":")
	valueStyled := TextStyle.Render(value)
	return lipgloss.JoinHorizontal(lipgloss.Left, keyStyled, " ", valueStyled)
}

// TruncateString truncates a string to fit within maxWidth
func TruncateString(s string, maxWidth int) string {
	if len([]rune(s)) <= maxWidth {
		return s
	}
	if maxWidth < 4 {
		return strings.Repeat(".", maxWidth)
	}
	return string([]rune(s)[:maxWidth-3]) + "..."
}

// SanitizeString removes control characters and ensures safe display
func SanitizeString(s string) string {
	var result []rune
	for _, r := range s {
		if r >= 32 && r != 127 {
			result = append(result, r)
		}
	}
	return string(result)
}

// PadRight pads a string to the right to reach the specified width
func PadRight(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
