package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nathoo/atelier/engine/state"
)

// warnDays is when the status bar switches to the warning colour.
const warnDays = 3

// statusText builds the left and right halves of the status bar and
// reports whether the season is nearly over.
func (m Model) statusText() (left, right string, warn bool) {
	m.sess.View(func(sm *state.Manager) {
		g, p := sm.Game, sm.Player
		left = fmt.Sprintf(" Day %d/%d | %s | Rank %s %d/%d",
			g.CurrentDay, g.MaxDays, g.CurrentPhase, p.Rank, p.PromotionGauge, p.PromotionGaugeMax)
		right = fmt.Sprintf("%s G | AP %d/%d | Q %d ",
			humanize.Comma(int64(p.Gold)), p.ActionPoints, p.ActionPointsMax, len(sm.Quests.ActiveQuests))
		warn = g.MaxDays-g.CurrentDay < warnDays
	})
	return left, right, warn
}

// renderStatusBar produces a full-width inverted status line.
func (m Model) renderStatusBar() string {
	left, right, warn := m.statusText()

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	bar := left + strings.Repeat(" ", gap) + right

	style := styleStatusBar
	if warn {
		style = styleStatusWarn
	}
	return style.Width(m.width).Render(bar)
}
