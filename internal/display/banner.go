package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerRaw string

// RenderBanner returns the banner centred for the current terminal width,
// followed by subtitle. To change the art replace banner.txt.
func RenderBanner(subtitle string) string {
	art := BannerStyle.Render(strings.TrimRight(bannerRaw, "\n"))
	if subtitle != "" {
		art = lipgloss.JoinVertical(lipgloss.Center, art, "", secondaryStyle.Render(subtitle))
	}
	width := termWidth()
	if lipgloss.Width(art) >= width {
		return art + "\n"
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, art) + "\n"
}

// termWidth returns the current terminal column count, or 80 as fallback.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}
