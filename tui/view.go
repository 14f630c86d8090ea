package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"go-chordbox/sequencer"
	"go-chordbox/theory"
	"go-chordbox/widgets"
)

const cellWidth = 20

var panelTitles = [numPanels]string{"Chords", "Chord type", "Editor"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Session.Snapshot()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	playState := "■ STOP"
	if snap.State.Playing {
		playState = lipgloss.NewStyle().Foreground(m.Theme.Success()).Render(string(m.Theme.Symbols.Playing) + " PLAY")
	}
	repeat := ""
	if snap.State.Repeat {
		repeat = "  " + string(m.Theme.Symbols.Repeat) + " repeat"
	}
	kb := ""
	if ids := m.keyboards(); len(ids) > 0 {
		kb = "  kb: " + strings.Join(ids, ", ")
	}
	header := headerStyle.Render(fmt.Sprintf("go-chordbox  %s  %d chords%s%s", playState, len(snap.Entries), repeat, kb))

	selector := m.renderSelector(snap.Selected)
	types := m.renderTypes(snap.Selected)
	editor := m.renderEditor(snap.Entries, snap.State.CurrentID)

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, selector, " ", types))
	b.WriteString("\n")
	b.WriteString(editor)
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status))
	b.WriteString("\n")
	if m.showHelp {
		b.WriteString(dimStyle.Render(widgets.RenderKeyHelp(m.keys.sections())))
		b.WriteString("\n\n")
		b.WriteString(m.renderLegend())
	} else {
		b.WriteString(m.help.View(m.keys))
	}
	return b.String()
}

func (m Model) renderSelector(selected theory.ChordType) string {
	var cells []string
	for i, n := range theory.Notes() {
		label := theory.Chord{Root: n, Type: selected}.String()
		style := m.cellStyle(panelSelector, i).Foreground(m.Theme.NoteColor(i))
		cells = append(cells, style.Render(m.mark(panelSelector, i, " ")+" "+label))
	}
	return m.renderPanel(panelSelector, widgets.RenderGrid(cells, gridCols))
}

func (m Model) renderTypes(selected theory.ChordType) string {
	var cells []string
	for i, t := range theory.ChordTypes() {
		mark := m.mark(panelTypes, i, " ")
		style := m.cellStyle(panelTypes, i)
		if t == selected {
			mark = string(m.Theme.Symbols.Selected)
			style = style.Foreground(m.Theme.Accent())
		}
		cells = append(cells, style.Render(mark+" "+t.Label()))
	}
	return m.renderPanel(panelTypes, widgets.RenderGrid(cells, gridCols))
}

func (m Model) renderEditor(entries []sequencer.Entry, current uuid.UUID) string {
	if len(entries) == 0 {
		hint := lipgloss.NewStyle().Foreground(m.Theme.Muted()).
			Render(string(m.Theme.Symbols.Empty) + " add chords from the chord panel, or press n")
		return m.renderPanel(panelEditor, hint)
	}

	var cells []string
	for i, e := range entries {
		mark := m.mark(panelEditor, i, " ")
		style := m.cellStyle(panelEditor, i)
		if current != uuid.Nil && e.ID == current {
			mark = string(m.Theme.Symbols.Playing)
			style = style.Foreground(m.Theme.BG()).Background(m.Theme.Active()).Bold(true)
		}
		cells = append(cells, style.Render(fmt.Sprintf("%s %d. %s", mark, i+1, e.Chord)))
	}
	return m.renderPanel(panelEditor, widgets.RenderGrid(cells, gridCols))
}

// mark is the cursor symbol on the focused cell, else fallback
func (m Model) mark(p panel, i int, fallback string) string {
	if m.focus == p && m.cursor[p] == i {
		return string(m.Theme.Symbols.Cursor)
	}
	return fallback
}

func (m Model) renderLegend() string {
	return strings.Join([]string{
		widgets.RenderLegendItem(m.Theme.Active(), string(m.Theme.Symbols.Playing), "now playing"),
		widgets.RenderLegendItem(m.Theme.Accent(), string(m.Theme.Symbols.Selected), "selected chord type"),
		widgets.RenderLegendItem(m.Theme.Cursor(), string(m.Theme.Symbols.Cursor), "cursor"),
	}, "\n")
}

func (m Model) cellStyle(p panel, i int) lipgloss.Style {
	style := lipgloss.NewStyle().Width(cellWidth).Foreground(m.Theme.FG())
	if m.focus == p && m.cursor[p] == i {
		style = style.Background(m.Theme.Surface()).Underline(true)
	}
	return style
}

func (m Model) renderPanel(p panel, body string) string {
	border := m.Theme.Muted()
	if m.focus == p {
		border = m.Theme.Cursor()
	}
	title := lipgloss.NewStyle().Foreground(border).Bold(m.focus == p).Render(panelTitles[p])
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	return lipgloss.JoinVertical(lipgloss.Left, title, box.Render(body))
}
