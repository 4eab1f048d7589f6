package engine

import "math"

// MachineState is the learning state machine position
type MachineState int

const (
	StateIdle MachineState = iota
	StateLearning
	StateGenerating
)

func (s MachineState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateLearning:
		return "LEARNING"
	case StateGenerating:
		return "GENERATING"
	default:
		return "?"
	}
}

// DefaultLearnTimeoutMs is the silence window that ends a capture
const DefaultLearnTimeoutMs = 1500

// NoteEvent is an already-decoded note-on delivered to the engine
type NoteEvent struct {
	Pitch    int
	Velocity int
}

// CCEvent is an already-decoded control change
type CCEvent struct {
	Number uint8
	Value  uint8
}

// KnobSample is one physical-knob reading for a slot
type KnobSample struct {
	Slot  int
	Value float64
}

// Inputs is everything the hardware layer hands the engine for one
// control-rate tick.
type Inputs struct {
	Notes   []NoteEvent
	CCs     []CCEvent
	Knobs   []KnobSample
	Trigger bool // note-trigger line rising edge
	Clock   bool // tempo-clock line rising edge
	Reset   bool
}

// NoteOut is a generated note-on command
type NoteOut struct {
	Pitch    uint8
	Velocity uint8
}

// Outputs is what one tick produced
type Outputs struct {
	Notes  []NoteOut
	Gate   bool
	GateMs int64 // pulse width used for notes generated this tick
}

// Engine aggregates all mutable state of the generative core. It is owned
// by a single control-rate caller; Tick is the only mutation point.
type Engine struct {
	Params         *Params
	Clock          *ClockEstimate
	Buffer         NoteBuffer
	Tendency       Tendencies
	Gen            GenerationState
	Gate           GateOutput
	State          MachineState
	CCMap          [NumParams]uint8
	LearnTimeoutMs int64
}

// New creates an engine with defaults
func New() *Engine {
	return &Engine{
		Params:         NewParams(),
		Clock:          NewClockEstimate(),
		State:          StateIdle,
		CCMap:          DefaultCCMap,
		LearnTimeoutMs: DefaultLearnTimeoutMs,
	}
}

// Tick runs one control-rate iteration. Event order within the tick:
// clock edges, note events, learning-timeout evaluation, remote CC writes,
// knob arbitration, smoothing, trigger-edge generation, gate timer.
func (e *Engine) Tick(now int64, in Inputs) Outputs {
	var out Outputs

	if in.Clock {
		e.Clock.OnTriggerEdge(now)
	}

	if in.Reset && e.State != StateIdle {
		e.Buffer.StartCapture(now)
		e.Tendency = Tendencies{}
		e.State = StateIdle
	}

	for _, n := range in.Notes {
		e.handleNote(n, now)
	}

	if e.State == StateLearning && e.Buffer.ShouldStop(now, e.learnTimeout()) {
		e.Tendency = Analyze(&e.Buffer)
		e.Gen.Reinit(&e.Tendency, e.Params, now)
		e.State = StateGenerating
	}

	for _, cc := range in.CCs {
		if slot, ok := e.slotForCC(cc.Number); ok {
			e.Params.WriteFromRemote(slot, float64(clampNote(int(cc.Value)))/127.0)
		}
	}

	for _, k := range in.Knobs {
		e.Params.WriteFromController(k.Slot, k.Value)
	}

	e.Params.Tick()

	if in.Trigger && e.State == StateGenerating {
		note := e.Gen.GenerateNext(e.Params, &e.Tendency, now)
		out.GateMs = GateLength(e.Clock)
		e.Gate.Trigger(now, out.GateMs)
		out.Notes = append(out.Notes, NoteOut{Pitch: note, Velocity: 100})
	}

	e.Gate.Tick(now)
	out.Gate = e.Gate.Active
	return out
}

// handleNote runs the state machine note transitions
func (e *Engine) handleNote(n NoteEvent, now int64) {
	pitch := int(clampNote(n.Pitch))
	switch e.State {
	case StateIdle:
		e.Buffer.StartCapture(now)
		e.Buffer.Append(pitch, now)
		e.State = StateLearning
	case StateGenerating:
		// Live phrase replacement: discard tendencies, start fresh.
		e.Tendency = Tendencies{}
		e.Buffer.StartCapture(now)
		e.Buffer.Append(pitch, now)
		e.State = StateLearning
	case StateLearning:
		e.Buffer.Append(pitch, now)
	}
}

// learnTimeout scales the configured silence window by the FORGET macro:
// x2 at 0, x1 at center, x0.5 at 1.
func (e *Engine) learnTimeout() int64 {
	forget := e.Params.Get(ParamForget)
	return int64(float64(e.LearnTimeoutMs) * math.Pow(2, 1-2*forget))
}

func (e *Engine) slotForCC(cc uint8) (int, bool) {
	for slot, n := range e.CCMap {
		if n == cc {
			return slot, true
		}
	}
	return 0, false
}

// StateSnapshot is the read-only engine view handed to the display
type StateSnapshot struct {
	State          MachineState
	BufferFill     int
	BufferCap      int
	CurrentNote    uint8
	RegisterCenter float64
	BPM            float64
	ClockInterval  int64
	Gate           bool
	PhraseCount    int
	PhraseTarget   int
}

// Snapshot returns display values for the engine
func (e *Engine) Snapshot() StateSnapshot {
	return StateSnapshot{
		State:          e.State,
		BufferFill:     e.Buffer.Len(),
		BufferCap:      MaxLearnNotes,
		CurrentNote:    e.Gen.CurrentNote,
		RegisterCenter: e.Tendency.RegisterCenter,
		BPM:            e.Clock.BPM,
		ClockInterval:  e.Clock.Interval,
		Gate:           e.Gate.Active,
		PhraseCount:    e.Gen.PhraseNoteCount,
		PhraseTarget:   e.Gen.PhraseTargetLength,
	}
}
