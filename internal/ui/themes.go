package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color theme for the TUI
type Theme struct {
	Name string

	// Primary colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor

	// Panel state colors
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	// UI colors
	Border lipgloss.AdaptiveColor
	Muted  lipgloss.AdaptiveColor
}

// adaptive builds a light/dark color pair
func adaptive(pair [2]string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: pair[0], Dark: pair[1]}
}

// buildTheme creates a theme from light/dark pairs, in field order
func buildTheme(name string, pairs ...[2]string) Theme {
	c := make([]lipgloss.AdaptiveColor, 9)
	for i := range c {
		if i < len(pairs) {
			c[i] = adaptive(pairs[i])
		}
	}
	return Theme{
		Name:      name,
		Primary:   c[0],
		Secondary: c[1],
		Accent:    c[2],
		Success:   c[3],
		Warning:   c[4],
		Error:     c[5],
		Info:      c[6],
		Border:    c[7],
		Muted:     c[8],
	}
}

// Available themes
var (
	DefaultTheme = buildTheme("default",
		[2]string{"#1E40AF", "#3B82F6"}, [2]string{"#6B7280", "#9CA3AF"}, [2]string{"#7C3AED", "#A855F7"},
		[2]string{"#059669", "#10B981"}, [2]string{"#D97706", "#F59E0B"}, [2]string{"#DC2626", "#EF4444"},
		[2]string{"#0891B2", "#06B6D4"}, [2]string{"#D1D5DB", "#374151"}, [2]string{"#6B7280", "#9CA3AF"})

	HighContrastTheme = buildTheme("high-contrast",
		[2]string{"#000000", "#FFFFFF"}, [2]string{"#666666", "#BBBBBB"}, [2]string{"#000080", "#8080FF"},
		[2]string{"#006600", "#00FF00"}, [2]string{"#CC6600", "#FFAA00"}, [2]string{"#CC0000", "#FF4444"},
		[2]string{"#0066CC", "#4499FF"}, [2]string{"#000000", "#FFFFFF"}, [2]string{"#666666", "#BBBBBB"})

	MinimalTheme = buildTheme("minimal",
		[2]string{"#2D3748", "#E2E8F0"}, [2]string{"#718096", "#A0AEC0"}, [2]string{"#4A5568", "#CBD5E0"},
		[2]string{"#2F855A", "#68D391"}, [2]string{"#C05621", "#F6AD55"}, [2]string{"#C53030", "#FC8181"},
		[2]string{"#2B6CB0", "#63B3ED"}, [2]string{"#E2E8F0", "#2D3748"}, [2]string{"#A0AEC0", "#718096"})
)

var themes = map[string]*Theme{
	DefaultTheme.Name:      &DefaultTheme,
	HighContrastTheme.Name: &HighContrastTheme,
	MinimalTheme.Name:      &MinimalTheme,
}

// Current active theme
var currentTheme = DefaultTheme

var colorDisabled bool

// GetTheme returns the current active theme
func GetTheme() Theme {
	return currentTheme
}

// SetThemeByName sets the theme by name
func SetThemeByName(name string) bool {
	theme, ok := themes[name]
	if !ok {
		return false
	}
	currentTheme = *theme
	return true
}

// GetAvailableThemes returns list of available theme names
func GetAvailableThemes() []string {
	return []string{"default", "high-contrast", "minimal"}
}

// SetColorDisabled turns styling off, as --no-color does
func SetColorDisabled(disabled bool) {
	colorDisabled = disabled
}

// IsColorDisabled checks if colors should be disabled
func IsColorDisabled() bool {
	return colorDisabled || os.Getenv("NO_COLOR") != ""
}

// Styles contains all the styled components
type Styles struct {
	Theme Theme

	Title  lipgloss.Style
	Header lipgloss.Style
	Body   lipgloss.Style
	Muted  lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Spinner lipgloss.Style

	// Picker is the file path input frame
	Picker  lipgloss.Style
	Focused lipgloss.Style

	// Panel is the result panel frame
	Panel      lipgloss.Style
	ErrorPanel lipgloss.Style
}

// GetStyles returns styles for the current theme. With colors disabled all
// styles keep their layout but drop colors.
func GetStyles() *Styles {
	if IsColorDisabled() {
		return plainStyles()
	}

	theme := GetTheme()

	return &Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true).
			Padding(0, 1),

		Header: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Body: lipgloss.NewStyle(),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(theme.Info),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

		Picker: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		Focused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		ErrorPanel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Error).
			Padding(0, 1),
	}
}

func plainStyles() *Styles {
	frame := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	return &Styles{
		Theme:      GetTheme(),
		Title:      lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Header:     lipgloss.NewStyle().Bold(true),
		Body:       lipgloss.NewStyle(),
		Muted:      lipgloss.NewStyle(),
		Success:    lipgloss.NewStyle(),
		Error:      lipgloss.NewStyle(),
		Info:       lipgloss.NewStyle(),
		Spinner:    lipgloss.NewStyle(),
		Picker:     frame,
		Focused:    frame,
		Panel:      frame,
		ErrorPanel: frame,
	}
}
