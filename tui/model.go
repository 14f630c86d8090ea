package tui

import (
	"fmt"
	"math"
	"time"

	"github.com/bep/debounce"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"go-chordbox/debug"
	"go-chordbox/midi"
	"go-chordbox/sequencer"
	"go-chordbox/theme"
	"go-chordbox/theory"
)

// statusTimeout is how long a status message stays after the last one
const statusTimeout = 3 * time.Second

type panel int

const (
	panelSelector panel = iota
	panelTypes
	panelEditor
	numPanels
)

// columns per panel grid
const gridCols = 4

const volumeStep = 0.1

// VolumeControl is an instrument whose level can change while running
type VolumeControl interface {
	SetVolume(level float64)
	Volume() float64
}

type Model struct {
	Session   *sequencer.Session
	DeviceMgr *midi.DeviceManager // nil when no keyboard is configured
	Theme     *theme.Theme

	volume      VolumeControl // nil when the output has no volume
	sub         *sequencer.Subscription
	keys        keyMap
	help        help.Model
	focus       panel
	cursor      [numPanels]int
	status      string
	statusCh    chan struct{}
	clearStatus func(func())
	showHelp    bool
	quitting    bool
	width       int
}

// SessionEventMsg carries a session or playback event
type SessionEventMsg sequencer.Event

type DeviceEventMsg midi.DeviceEvent

// NoteMsg is a key press on a connected keyboard
type NoteMsg midi.NoteEvent

type clearStatusMsg struct{}

func NewModel(session *sequencer.Session, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	return Model{
		Session:     session,
		DeviceMgr:   deviceMgr,
		Theme:       th,
		sub:         session.Subscribe(),
		keys:        newKeyMap(),
		help:        help.New(),
		statusCh:    make(chan struct{}, 1),
		clearStatus: debounce.New(statusTimeout),
	}
}

// WithVolume lets +/- change the level of vc
func (m Model) WithVolume(vc VolumeControl) Model {
	m.volume = vc
	return m
}

// WithStatus shows msg until the first status timeout
func (m Model) WithStatus(msg string) Model {
	m.setStatus(msg)
	return m
}

func ListenForEvents(sub *sequencer.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case e := <-sub.Events:
			return SessionEventMsg(e)
		case <-sub.Done:
			return nil
		}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func ListenForNotes(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		return NoteMsg(<-deviceMgr.Notes())
	}
}

func listenForStatusClear(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return clearStatusMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		ListenForEvents(m.sub),
		listenForStatusClear(m.statusCh),
	}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr), ListenForNotes(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SessionEventMsg:
		m.handleEvent(sequencer.Event(msg))
		return m, ListenForEvents(m.sub)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.setStatus("keyboard connected: " + event.ID)
		case midi.DeviceDisconnected:
			m.setStatus("keyboard disconnected: " + event.ID)
		}
		return m, ListenForDevices(m.DeviceMgr)

	case NoteMsg:
		root := midi.NoteEvent(msg).Root()
		if m.Session.AddChord(root) {
			m.setStatus("added " + theory.Chord{Root: root, Type: m.Session.Selected()}.String())
		} else {
			m.setStatus("stop playback to edit")
		}
		var next tea.Cmd
		if m.DeviceMgr != nil {
			next = ListenForNotes(m.DeviceMgr)
		}
		return m, next

	case clearStatusMsg:
		m.status = ""
		return m, listenForStatusClear(m.statusCh)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.Session.Stop()
		m.Session.Unsubscribe(m.sub)
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, m.keys.NextPane):
		m.focus = (m.focus + 1) % numPanels

	case key.Matches(msg, m.keys.PrevPane):
		m.focus = (m.focus + numPanels - 1) % numPanels

	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-gridCols)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(gridCols)

	case key.Matches(msg, m.keys.Enter):
		m.activate()

	case key.Matches(msg, m.keys.Remove):
		if m.focus == panelEditor {
			m.edited(m.Session.RemoveChordAt(m.cursor[panelEditor]))
			m.clampCursor()
		}

	case key.Matches(msg, m.keys.Random):
		e, ok := m.Session.AddRandom()
		if m.edited(ok) {
			m.setStatus("added " + e.Chord.String())
		}

	case key.Matches(msg, m.keys.Clear):
		m.edited(m.Session.Clear())
		m.clampCursor()

	case key.Matches(msg, m.keys.Play):
		m.togglePlay()

	case key.Matches(msg, m.keys.Repeat):
		if !m.Session.ToggleRepeat() {
			m.setStatus("stop playback to change repeat")
		}

	case key.Matches(msg, m.keys.VolUp):
		m.changeVolume(volumeStep)
	case key.Matches(msg, m.keys.VolDown):
		m.changeVolume(-volumeStep)
	}

	return m, nil
}

// activate runs enter on the focused panel
func (m *Model) activate() {
	switch m.focus {
	case panelSelector:
		root := theory.Note(m.cursor[panelSelector])
		m.edited(m.Session.AddChord(root))
	case panelTypes:
		t := theory.ChordTypes()[m.cursor[panelTypes]]
		if m.edited(m.Session.SelectType(t)) {
			m.setStatus("chord type: " + t.Label())
		}
	case panelEditor:
		m.togglePlay()
	}
}

func (m *Model) togglePlay() {
	if m.Session.Sequencer().IsPlaying() {
		m.Session.Stop()
		return
	}
	if !m.Session.Play() {
		m.setStatus("add chords to play")
	}
}

func (m *Model) changeVolume(delta float64) {
	if m.volume == nil {
		m.setStatus("volume is fixed for this output")
		return
	}
	level := math.Round((m.volume.Volume()+delta)*10) / 10
	m.volume.SetVolume(min(max(level, 0), 1))
	m.setStatus(fmt.Sprintf("volume %.0f%%", m.volume.Volume()*100))
}

// keyboards lists connected keyboards for the header
func (m Model) keyboards() []string {
	if m.DeviceMgr == nil {
		return nil
	}
	return m.DeviceMgr.Keyboards()
}

// edited reports ok and explains a refused edit
func (m *Model) edited(ok bool) bool {
	if !ok && m.Session.Sequencer().IsPlaying() {
		m.setStatus("stop playback to edit")
	}
	return ok
}

func (m *Model) handleEvent(e sequencer.Event) {
	debug.Log("tui", "event %s idx=%d", e.Kind, e.Index)
	switch e.Kind {
	case sequencer.EventFinished:
		m.setStatus("finished")
	case sequencer.EventSequenceChanged:
		m.clampCursor()
	}
}

func (m *Model) panelLen(p panel) int {
	switch p {
	case panelSelector:
		return theory.NumNotes
	case panelTypes:
		return len(theory.ChordTypes())
	default:
		return m.Session.Len()
	}
}

func (m *Model) moveCursor(delta int) {
	n := m.panelLen(m.focus)
	next := m.cursor[m.focus] + delta
	if next < 0 || next >= n {
		return
	}
	m.cursor[m.focus] = next
}

func (m *Model) clampCursor() {
	n := m.Session.Len()
	if m.cursor[panelEditor] >= n {
		m.cursor[panelEditor] = max(n-1, 0)
	}
}

func (m *Model) setStatus(s string) {
	m.status = s
	ch := m.statusCh
	m.clearStatus(func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})
}
