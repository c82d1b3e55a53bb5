package tui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/hylla/kanban/internal/domain"
)

// palette holds the colors shared by every screen.
type palette struct {
	accent color.Color
	muted  color.Color
	dim    color.Color
	danger color.Color
	status [domain.StatusCount]color.Color
}

// defaultPalette returns the board colors.
func defaultPalette() palette {
	return palette{
		accent: lipgloss.Color("62"),
		muted:  lipgloss.Color("241"),
		dim:    lipgloss.Color("239"),
		danger: lipgloss.Color("203"),
		status: [domain.StatusCount]color.Color{
			lipgloss.Color("75"),
			lipgloss.Color("214"),
			lipgloss.Color("114"),
		},
	}
}

// panelOverhead is border (2) + horizontal padding (4) + right margin (1).
const panelOverhead = 7

// View renders the active screen and any overlay.
func (m Model) View() tea.View {
	if !m.ready || (!m.loaded && m.err == nil) {
		return newAltView("loading...")
	}
	p := defaultPalette()
	statusStyle := lipgloss.NewStyle().Foreground(p.dim)

	body := m.renderEmpty(p)
	if !m.board.IsEmpty() {
		body = m.renderBoard(p)
	}
	sections := []string{m.renderHeader(p), "", body}
	if strings.TrimSpace(m.status) != "" && m.status != "ready" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(p.muted).
		BorderTop(true).
		BorderForeground(p.dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))
	if m.height > 0 {
		content = fitLines(content, max(0, m.height-lipgloss.Height(helpLine)))
	}

	fullContent := content + "\n" + helpLine
	if overlay := m.renderOverlay(p, m.width-8); overlay != "" {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, overlay, max(1, m.width), max(1, overlayHeight))
	}
	return newAltView(fullContent)
}

// newAltView wraps content in an alt-screen view.
func newAltView(content string) tea.View {
	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

// renderHeader renders the title line with per-status counts.
func (m Model) renderHeader(p palette) string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	countStyle := lipgloss.NewStyle().Foreground(p.dim)
	counts := make([]string, 0, domain.StatusCount)
	for _, status := range domain.Statuses() {
		counts = append(counts, fmt.Sprintf("%s %d", strings.ToLower(status.String()), m.board.Len(status)))
	}
	header := titleStyle.Render("kanban") + countStyle.Render("  "+strings.Join(counts, " • "))
	if m.busy {
		header += countStyle.Render("  …")
	}
	return header
}

// renderEmpty renders the Empty screen body.
func (m Model) renderEmpty(p palette) string {
	hint := lipgloss.NewStyle().Foreground(p.muted)
	add := m.keys.addTask.Help().Key
	return strings.Join([]string{
		"No tasks yet.",
		hint.Render(fmt.Sprintf("Press %s to add your first task.", add)),
		hint.Render("Press q to quit."),
	}, "\n")
}

// renderBoard renders the three status panels and the focused task's description.
func (m Model) renderBoard(p palette) string {
	detail := m.renderFocusedDetail(p)
	panelHeight := m.panelHeight(lipgloss.Height(detail))
	panelWidth := m.panelWidth()

	views := make([]string, 0, domain.StatusCount)
	for _, status := range domain.Statuses() {
		views = append(views, m.renderPanel(p, status, panelWidth, panelHeight))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, views...)
	if detail == "" {
		return board
	}
	return board + "\n" + detail
}

// renderPanel renders one status column, scrolled so the focused row stays visible.
func (m Model) renderPanel(p palette, status domain.Status, width, height int) string {
	focused := m.focus.status() == status
	tasks := m.board.Tasks(status)

	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.dim).
		Padding(1, 2).
		MarginRight(1).
		Width(width)
	if focused {
		style = style.BorderForeground(p.status[status])
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(p.status[status])
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(p.muted)

	header := titleStyle.Render(fmt.Sprintf("%s (%d)", status, len(tasks)))
	lines := make([]string, 0, max(1, len(tasks)*3))
	selectedStart, selectedEnd := -1, -1
	if len(tasks) == 0 {
		lines = append(lines, emptyStyle.Render("(empty)"))
	}
	for row, task := range tasks {
		selected := focused && row == m.focus.row
		prefix := "   "
		if selected {
			prefix = "│  "
		}
		title := prefix + truncate(task.Title, max(1, width-8))
		if selected {
			title = selectedStyle.Render(title)
		}
		start := len(lines)
		lines = append(lines, title)
		if sub := m.taskSecondary(task); sub != "" {
			subPrefix := "   "
			if selected {
				subPrefix = "│  "
			}
			lines = append(lines, subPrefix+subStyle.Render(truncate(sub, max(1, width-8))))
		}
		if row < len(tasks)-1 {
			lines = append(lines, "")
		}
		if selected {
			selectedStart, selectedEnd = start, len(lines)-1
		}
	}

	innerHeight := max(1, height-4)
	window := max(1, innerHeight-1)
	top := 0
	if selectedEnd >= window {
		top = selectedEnd - window + 1
	}
	if selectedStart >= 0 && selectedStart < top {
		top = selectedStart
	}
	top = clamp(top, 0, max(0, len(lines)-window))
	if len(lines) > window {
		lines = lines[top : top+window]
	}

	content := fitLines(header+"\n"+strings.Join(lines, "\n"), innerHeight)
	return style.Render(content)
}

// taskSecondary returns the muted line under a task title.
func (m Model) taskSecondary(task domain.Task) string {
	if m.boardCfg.ShowCategories && task.Category != "" {
		return "[" + task.Category + "]"
	}
	return ""
}

// renderFocusedDetail renders the focused task's description preview.
func (m Model) renderFocusedDetail(p palette) string {
	if !m.boardCfg.ShowBodyPreview {
		return ""
	}
	task, ok := m.focusedTask()
	if !ok || strings.TrimSpace(task.Body) == "" {
		return ""
	}
	width := max(24, m.width-4)
	rendered := m.markdown.render(task.Body, width)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(p.muted)
	return titleStyle.Render(truncate(task.Title, width)) + "\n" + fitLines(rendered, 6)
}

// renderOverlay returns the modal for the active screen, the error notice, or full help.
func (m Model) renderOverlay(p palette, maxWidth int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.accent).
		Padding(0, 1)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(p.accent)
	hintStyle := lipgloss.NewStyle().Foreground(p.muted)

	if m.err != nil {
		box = box.BorderForeground(p.danger)
		if maxWidth > 0 {
			box = box.Width(clamp(maxWidth, 36, 80))
		}
		return box.Render(strings.Join([]string{
			lipgloss.NewStyle().Bold(true).Foreground(p.danger).Render("Error"),
			m.err.Error(),
			"",
			hintStyle.Render("enter/esc dismiss"),
		}, "\n"))
	}

	switch m.screen {
	case screenForm:
		width := clamp(maxWidth, 40, 96)
		box = box.Width(width)
		preview := ""
		if m.boardCfg.ShowBodyPreview {
			preview = fitLines(m.markdown.render(m.form.body.Value(), width-4), 8)
		}
		return box.Render(m.form.view(p, width, preview))

	case screenDelete:
		if maxWidth > 0 {
			box = box.Width(clamp(maxWidth, 36, 72))
		}
		confirmStyle, cancelStyle := hintStyle, hintStyle
		if m.deleteChoice == deleteChoiceConfirm {
			confirmStyle = lipgloss.NewStyle().Bold(true).Foreground(p.danger)
		} else {
			cancelStyle = titleStyle
		}
		return box.Render(strings.Join([]string{
			titleStyle.Render("Delete Task"),
			"Delete " + quoteTitle(m.deleteTarget.Title) + "?",
			confirmStyle.Render("[delete]") + "  " + cancelStyle.Render("[cancel]"),
			hintStyle.Render("enter apply • esc cancel • h/l switch • y confirm • n cancel"),
		}, "\n"))
	}

	if m.help.ShowAll {
		if maxWidth > 0 {
			box = box.Width(clamp(maxWidth, 36, 88))
		}
		full := m.help
		full.ShowAll = true
		full.SetWidth(clamp(maxWidth, 36, 88) - 4)
		return box.Render(titleStyle.Render("Keys") + "\n" + full.View(m.keys) + "\n" + hintStyle.Render("? or esc close"))
	}
	return ""
}

// panelWidth returns the inner width of one status panel.
func (m Model) panelWidth() int {
	if m.width <= 0 {
		return 28
	}
	return clamp((m.width-domain.StatusCount*panelOverhead)/domain.StatusCount, 16, 48)
}

// panelHeight returns the outer height of the status panels.
func (m Model) panelHeight(detailHeight int) int {
	// header, spacer, status line, help border and help line.
	const chrome = 5
	h := m.height - chrome
	if detailHeight > 0 {
		h -= detailHeight + 1
	}
	return max(8, h)
}

// quoteTitle quotes a task title for prompts.
func quoteTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "(untitled task)"
	}
	return fmt.Sprintf("%q", truncate(title, 48))
}

// formatTimestamp renders a stored timestamp in local time.
func formatTimestamp(at time.Time) string {
	if at.IsZero() {
		return "-"
	}
	return at.Local().Format("2006-01-02 15:04")
}

// clamp clamps the requested operation.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines pads or cuts content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base on a width×height canvas.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
