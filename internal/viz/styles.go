package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles holds the text styles of one theme. Curve and marker colors come
// from Theme.inks instead.
type styles struct {
	header  lipgloss.Style
	section lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	axis    lipgloss.Style
	help    lipgloss.Style
	square  lipgloss.Style
	panel   lipgloss.Style
}

func (t Theme) styles() styles {
	panel := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(t.Muted).
		Padding(0, 2).
		Width(sidebarWidth - 2)

	return styles{
		header:  lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
		section: lipgloss.NewStyle().Foreground(t.Accent).Bold(true).MarginTop(1),
		label:   lipgloss.NewStyle().Foreground(t.Muted),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		axis:    lipgloss.NewStyle().Foreground(t.Muted),
		help:    lipgloss.NewStyle().Foreground(t.Muted).Faint(true),
		square:  lipgloss.NewStyle().Foreground(t.Text),
		panel:   panel,
	}
}

// row renders one label/value line of the sidebar.
func (s styles) row(label, value string) string {
	return s.label.Render(fmt.Sprintf("%-11s", label)) + s.value.Render(value) + "\n"
}

// Square draws a block whose area is proportional to volume/maxVolume. The
// full block is maxSide rows tall; cells are twice as tall as they are wide
// so each row holds two columns per unit.
func Square(volume, maxVolume float64, maxSide int) string {
	if maxVolume <= 0 || volume <= 0 || maxSide <= 0 {
		return ""
	}
	frac := volume / maxVolume
	if frac > 1 {
		frac = 1
	}
	side := int(math.Sqrt(frac)*float64(maxSide) + 0.5)
	if side < 1 {
		side = 1
	}
	row := strings.Repeat("█", side*2)
	rows := make([]string, side)
	for i := range rows {
		rows[i] = row
	}
	return strings.Join(rows, "\n")
}
