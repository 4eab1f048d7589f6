package engine

import (
	"sync"
	"time"

	"go-generative/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// echo note-off delay for live input thru
const echoNoteMs = 100

// Manager owns the engine and its runtime goroutines: the control-rate tick
// loop and the internal clock. All input reaches the engine through buffered
// channels drained once per tick, so the engine has a single writer.
type Manager struct {
	engine *Engine
	mu     sync.RWMutex

	tickRate int   // control-rate ticks per second
	channel  uint8 // MIDI send channel (0-based)

	send func(gomidi.Message) error

	noteChan  chan NoteEvent
	ccChan    chan CCEvent
	knobChan  chan KnobSample
	resetChan chan struct{}

	internalBPM int
	clockOn     bool
	nextClockAt int64

	start    time.Time
	stopChan chan struct{}
	stopOnce sync.Once

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager creates a manager around a fresh engine
func NewManager(tickRate int, internalBPM int, channel uint8) *Manager {
	if tickRate <= 0 {
		tickRate = 500
	}
	return &Manager{
		engine:      New(),
		tickRate:    tickRate,
		channel:     channel,
		noteChan:    make(chan NoteEvent, 64),
		ccChan:      make(chan CCEvent, 64),
		knobChan:    make(chan KnobSample, 64),
		resetChan:   make(chan struct{}, 1),
		internalBPM: clampTempo(internalBPM),
		clockOn:     true,
		stopChan:    make(chan struct{}),
		UpdateChan:  make(chan struct{}, 1),
	}
}

// Engine exposes the underlying engine for configuration before StartRuntime
func (m *Manager) Engine() *Engine {
	return m.engine
}

// SetSender sets the MIDI output sink
func (m *Manager) SetSender(send func(gomidi.Message) error) {
	m.mu.Lock()
	m.send = send
	m.mu.Unlock()
}

// StartRuntime starts the control-rate tick loop (call once)
func (m *Manager) StartRuntime() {
	m.start = time.Now()
	m.nextClockAt = 0
	go m.tickLoop()
}

// Stop halts the runtime
func (m *Manager) Stop() {
	m.stopOnce.Do(func() { close(m.stopChan) })
}

// now returns milliseconds since runtime start
func (m *Manager) now() int64 {
	return time.Since(m.start).Milliseconds()
}

func (m *Manager) tickLoop() {
	ticker := time.NewTicker(time.Second / time.Duration(m.tickRate))
	uiTicker := time.NewTicker(time.Second / 30) // 30 FPS
	defer ticker.Stop()
	defer uiTicker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.runTick()
		case <-uiTicker.C:
			m.notifyUpdate()
		}
	}
}

// runTick drains pending input, advances the internal clock, and runs one
// engine tick.
func (m *Manager) runTick() {
	now := m.now()
	var in Inputs

	for drained := false; !drained; {
		select {
		case n := <-m.noteChan:
			in.Notes = append(in.Notes, n)
		case cc := <-m.ccChan:
			in.CCs = append(in.CCs, cc)
		case k := <-m.knobChan:
			in.Knobs = append(in.Knobs, k)
		case <-m.resetChan:
			in.Reset = true
		default:
			drained = true
		}
	}

	m.mu.Lock()
	if m.advanceClock(now) {
		in.Trigger = true
		in.Clock = true
	}
	prevState := m.engine.State
	out := m.engine.Tick(now, in)
	newState := m.engine.State
	send := m.send
	ch := m.channel
	m.mu.Unlock()

	if newState != prevState {
		debug.Log("state", "%s -> %s", prevState, newState)
	}

	for _, n := range out.Notes {
		debug.LogEvery(8, "gen", "note=%d gate=%dms", n.Pitch, out.GateMs)
		if send != nil {
			send(gomidi.NoteOn(ch, n.Pitch, n.Velocity))
			go func(pitch uint8, offMs int64) {
				time.Sleep(time.Duration(offMs) * time.Millisecond)
				m.mu.RLock()
				s := m.send
				m.mu.RUnlock()
				if s != nil {
					s(gomidi.NoteOff(ch, pitch))
				}
			}(n.Pitch, out.GateMs)
		}
	}

	if len(in.Notes) > 0 || len(out.Notes) > 0 || in.Reset || newState != prevState {
		m.notifyUpdate()
	}
}

// advanceClock reports whether an internal clock edge is due at now and
// schedules the next one. The next edge advances by a whole period from
// the previous one, not from now, so tick jitter never accumulates into
// tempo drift. A stall longer than a period resyncs to now. Caller holds
// the lock.
func (m *Manager) advanceClock(now int64) bool {
	if !m.clockOn || now < m.nextClockAt {
		return false
	}
	period := int64(60000 / m.internalBPM)
	m.nextClockAt += period
	if now >= m.nextClockAt {
		m.nextClockAt = now + period
	}
	return true
}

// HandleNote feeds a live input note to the engine and echoes it to the
// output immediately (bypassing the tick for low latency).
func (m *Manager) HandleNote(pitch uint8, velocity uint8) {
	select {
	case m.noteChan <- NoteEvent{Pitch: int(pitch), Velocity: int(velocity)}:
	default:
	}

	m.mu.RLock()
	send := m.send
	ch := m.channel
	m.mu.RUnlock()
	if send != nil {
		send(gomidi.NoteOn(ch, pitch, velocity))
		go func() {
			time.Sleep(echoNoteMs * time.Millisecond)
			m.mu.RLock()
			s := m.send
			m.mu.RUnlock()
			if s != nil {
				s(gomidi.NoteOff(ch, pitch))
			}
		}()
	}
	m.notifyUpdate()
}

// HandleCC feeds a remote control change to the engine
func (m *Manager) HandleCC(number, value uint8) {
	select {
	case m.ccChan <- CCEvent{Number: number, Value: value}:
	default:
	}
}

// SetKnob feeds one virtual-knob sample for a slot
func (m *Manager) SetKnob(slot int, value float64) {
	select {
	case m.knobChan <- KnobSample{Slot: slot, Value: value}:
	default:
	}
}

// Reset signals the engine back to idle
func (m *Manager) Reset() {
	select {
	case m.resetChan <- struct{}{}:
	default:
	}
}

// SetTempo sets the internal clock rate, clamped to the engine's range
func (m *Manager) SetTempo(bpm int) {
	m.mu.Lock()
	m.internalBPM = clampTempo(bpm)
	m.mu.Unlock()
	m.notifyUpdate()
}

// Tempo returns the internal clock rate
func (m *Manager) Tempo() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.internalBPM
}

// SetClockEnabled toggles the internal trigger clock
func (m *Manager) SetClockEnabled(on bool) {
	m.mu.Lock()
	m.clockOn = on
	m.mu.Unlock()
}

// Snapshot returns the display view of the engine state
func (m *Manager) Snapshot() StateSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engine.Snapshot()
}

// ParamSnapshot returns the display view of all parameter slots
func (m *Manager) ParamSnapshot() [NumParams]ParamSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engine.Params.Snapshot()
}

func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

func clampTempo(bpm int) int {
	if bpm < 20 {
		return 20
	}
	if bpm > 300 {
		return 300
	}
	return bpm
}
