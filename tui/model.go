package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-generative/engine"
	"go-generative/midi"
)

const (
	numPages      = 3
	paramsPerPage = 4
	barWidth      = 24
)

var pageTitles = [numPages]string{"PERFORMANCE", "MACRO", "STRUCTURAL"}

// keyNotes maps the QWERTY home row onto a C major octave so phrases can be
// played in without a hardware keyboard
var keyNotes = map[string]uint8{
	"a": 60, "s": 62, "d": 64, "f": 65,
	"g": 67, "h": 69, "j": 71, "k": 72,
}

type Model struct {
	Manager   *engine.Manager
	DeviceMgr *midi.DeviceManager

	page     int
	selected int // row within the page

	// Virtual knob positions - the physical-knob path into the pickup logic
	knobs [engine.NumParams]float64

	inputID  string // connected MIDI input (empty if none)
	quitting bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(manager *engine.Manager, deviceMgr *midi.DeviceManager) Model {
	m := Model{
		Manager:   manager,
		DeviceMgr: deviceMgr,
	}
	for i := range m.knobs {
		m.knobs[i] = 0.5
	}
	return m
}

func ListenForUpdates(manager *engine.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event := <-deviceMgr.Events()
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForDevices(m.DeviceMgr),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected {
			m.inputID = event.ID
			kb := event.Controller
			go func() {
				for evt := range kb.NoteEvents() {
					m.Manager.HandleNote(evt.Note, evt.Velocity)
				}
			}()
			go func() {
				for evt := range kb.CCEvents() {
					m.Manager.HandleCC(evt.Number, evt.Value)
				}
			}()
		} else if event.Type == midi.DeviceDisconnected {
			if m.inputID == event.ID {
				m.inputID = ""
			}
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.Manager.Stop()
		return m, tea.Quit

	case "tab":
		m.page = (m.page + 1) % numPages
	case "shift+tab":
		m.page = (m.page + numPages - 1) % numPages

	case "up":
		if m.selected > 0 {
			m.selected--
		}
	case "down":
		if m.selected < paramsPerPage-1 {
			m.selected++
		}

	case "left", "right":
		slot := m.page*paramsPerPage + m.selected
		step := 0.02
		if key == "left" {
			step = -step
		}
		v := m.knobs[slot] + step
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		m.knobs[slot] = v
		m.Manager.SetKnob(slot, v)

	case "r":
		m.Manager.Reset()

	case "+", "=":
		m.Manager.SetTempo(m.Manager.Tempo() + 5)
	case "-", "_":
		m.Manager.SetTempo(m.Manager.Tempo() - 5)

	default:
		if note, ok := keyNotes[key]; ok {
			m.Manager.HandleNote(note, 100)
		}
	}
	return m, nil
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(n uint8) string {
	return fmt.Sprintf("%s%d", noteNames[n%12], int(n)/12-1)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.Manager.Snapshot()
	params := m.Manager.ParamSnapshot()

	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	gateStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("82"))

	// Header: state, tempo estimate, clock, current note
	state := snap.State.String()
	if snap.State == engine.StateLearning {
		state = fmt.Sprintf("%s %d/%d", state, snap.BufferFill, snap.BufferCap)
	}
	gate := " "
	if snap.Gate {
		gate = gateStyle.Render("▮")
	}
	note := "---"
	if snap.State == engine.StateGenerating {
		note = fmt.Sprintf("%s (%d)", noteName(snap.CurrentNote), snap.CurrentNote)
	}
	input := ""
	if m.inputID != "" {
		input = "  in:" + m.inputID
	}
	header := headerStyle.Render(fmt.Sprintf(
		"go-generative  %-14s %3.0fbpm %s note:%s%s", state, snap.BPM, gate, note, input))

	// Page dots + title
	dots := make([]string, numPages)
	for i := range dots {
		if i == m.page {
			dots[i] = "●"
		} else {
			dots[i] = "○"
		}
	}
	pageLine := dimStyle.Render(fmt.Sprintf("%s  %s", pageTitles[m.page], strings.Join(dots, " ")))

	// Parameter rows for this page
	var rows strings.Builder
	for i := 0; i < paramsPerPage; i++ {
		slot := m.page*paramsPerPage + i
		p := params[slot]

		filled := int(p.Smoothed * barWidth)
		if filled > barWidth {
			filled = barWidth
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

		pickup := " "
		if p.Pickup {
			pickup = "*"
		}
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-8s %s %s%4.2f  knob:%4.2f", cursor, p.Name, bar, pickup, p.Smoothed, m.knobs[slot])
		if i == m.selected {
			line = selStyle.Render(line)
		}
		rows.WriteString(line)
		rows.WriteString("\n")
	}

	help := dimStyle.Render("tab:page  ↑↓:select  ←→:knob  a-k:notes  r:reset  +/-:tempo  q:quit")

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(pageLine)
	out.WriteString("\n")
	out.WriteString(rows.String())
	out.WriteString("\n")
	out.WriteString(help)
	return out.String()
}
