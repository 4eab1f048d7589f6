package engine

import "testing"

func noteIn(pitches ...int) Inputs {
	var in Inputs
	for _, p := range pitches {
		in.Notes = append(in.Notes, NoteEvent{Pitch: p, Velocity: 100})
	}
	return in
}

// learnPhrase drives an idle engine through a full capture into Generating
func learnPhrase(e *Engine, pitches ...int) {
	now := int64(0)
	for _, p := range pitches {
		e.Tick(now, noteIn(p))
		now += 100
	}
	e.Tick(now+e.LearnTimeoutMs+10, Inputs{})
}

func TestStateMachineIdleToLearningOnFirstNote(t *testing.T) {
	e := New()
	if e.State != StateIdle {
		t.Fatalf("fresh engine must be idle")
	}
	e.Tick(0, noteIn(60))
	if e.State != StateLearning {
		t.Fatalf("first note must enter learning, state=%s", e.State)
	}
	if e.Buffer.Len() != 1 {
		t.Fatalf("note must land in the buffer, fill=%d", e.Buffer.Len())
	}
}

func TestStateMachineLearnsThenGenerates(t *testing.T) {
	e := New()
	learnPhrase(e, 60, 62, 64, 65)

	if e.State != StateGenerating {
		t.Fatalf("silence after a full phrase must enter generating, state=%s", e.State)
	}
	if e.Tendency.Ascending != 3 {
		t.Fatalf("transition must analyze the buffer, asc=%d", e.Tendency.Ascending)
	}
	if e.Gen.CurrentNote != 63 { // round(62.75)
		t.Fatalf("generator must seed from the register center, got %d", e.Gen.CurrentNote)
	}
}

func TestStateMachineTooFewNotesKeepsLearning(t *testing.T) {
	e := New()
	e.Tick(0, noteIn(60))
	e.Tick(100, noteIn(62))
	e.Tick(100+10*DefaultLearnTimeoutMs, Inputs{})
	if e.State != StateLearning {
		t.Fatalf("below the minimum the machine must wait, state=%s", e.State)
	}
}

func TestStateMachineNoteBeforeTimeoutInSameTick(t *testing.T) {
	e := New()
	e.Tick(0, noteIn(60))
	e.Tick(100, noteIn(62))
	e.Tick(200, noteIn(64))

	// A note arriving in the very tick the timeout would fire refreshes the
	// capture instead of ending it.
	e.Tick(200+e.LearnTimeoutMs+10, noteIn(65))
	if e.State != StateLearning {
		t.Fatalf("note must be processed before timeout evaluation, state=%s", e.State)
	}
	if e.Buffer.Len() != 4 {
		t.Fatalf("buffer fill=%d want 4", e.Buffer.Len())
	}
}

func TestStateMachineLivePhraseReplacement(t *testing.T) {
	e := New()
	learnPhrase(e, 60, 62, 64, 65)
	if e.State != StateGenerating {
		t.Fatalf("setup failed, state=%s", e.State)
	}

	// A note while generating discards tendencies and restarts capture.
	e.Tick(10000, noteIn(40))
	if e.State != StateLearning {
		t.Fatalf("note while generating must re-enter learning, state=%s", e.State)
	}
	if e.Buffer.Len() != 1 {
		t.Fatalf("buffer must be reset before the new note, fill=%d", e.Buffer.Len())
	}
	want := Tendencies{}
	if e.Tendency != want {
		t.Fatalf("previous tendencies must be discarded, got %+v", e.Tendency)
	}
}

func TestStateMachineResetReturnsToIdle(t *testing.T) {
	e := New()
	learnPhrase(e, 60, 62, 64, 65)

	e.Tick(10000, Inputs{Reset: true})
	if e.State != StateIdle {
		t.Fatalf("reset must return to idle, state=%s", e.State)
	}
	if e.Buffer.Len() != 0 || e.Tendency != (Tendencies{}) {
		t.Fatalf("reset must clear buffer and tendencies")
	}
}

func TestTriggerGeneratesNoteWithDefaultGate(t *testing.T) {
	e := New()
	learnPhrase(e, 60, 62, 64, 65)

	// No clock edges yet: first generated note uses the default gate width.
	out := e.Tick(20000, Inputs{Trigger: true})
	if len(out.Notes) != 1 {
		t.Fatalf("trigger while generating must emit one note, got %d", len(out.Notes))
	}
	if out.Notes[0].Velocity != 100 {
		t.Fatalf("velocity=%d want 100", out.Notes[0].Velocity)
	}
	if out.GateMs != defaultGateMs {
		t.Fatalf("first gate=%dms want %d", out.GateMs, defaultGateMs)
	}
	if !out.Gate {
		t.Fatalf("gate output must be high right after the trigger")
	}
}

func TestTriggerIgnoredOutsideGenerating(t *testing.T) {
	e := New()
	out := e.Tick(0, Inputs{Trigger: true})
	if len(out.Notes) != 0 {
		t.Fatalf("idle engine must not generate")
	}

	e.Tick(10, noteIn(60))
	out = e.Tick(20, Inputs{Trigger: true})
	if len(out.Notes) != 0 {
		t.Fatalf("learning engine must not generate")
	}
}

func TestGateFollowsClockInterval(t *testing.T) {
	e := New()
	learnPhrase(e, 60, 62, 64, 65)

	e.Tick(20000, Inputs{Clock: true})
	out := e.Tick(20500, Inputs{Clock: true, Trigger: true})
	if out.GateMs != 250 {
		t.Fatalf("gate=%dms want half the 500ms interval", out.GateMs)
	}

	// Gate drops after the width elapses.
	out = e.Tick(20500+250, Inputs{})
	if out.Gate {
		t.Fatalf("gate must be low after the pulse width")
	}
}

func TestCCMapRoutesRemoteWrites(t *testing.T) {
	e := New()
	e.Tick(0, Inputs{CCs: []CCEvent{{Number: DefaultCCMap[ParamEnergy], Value: 127}}})
	if got := e.Params.Get(ParamEnergy); got != 1.0 {
		t.Fatalf("mapped CC must write its slot, energy=%f", got)
	}

	before := e.Params.Snapshot()
	e.Tick(1, Inputs{CCs: []CCEvent{{Number: 5, Value: 99}}})
	after := e.Params.Snapshot()
	for i := range before {
		if before[i].Smoothed != after[i].Smoothed {
			t.Fatalf("unmapped CC must be ignored, slot %d changed", i)
		}
	}
}

func TestRemoteWriteWinsOverKnobInSameTick(t *testing.T) {
	e := New()
	e.Tick(0, Inputs{Knobs: []KnobSample{{Slot: ParamMotion, Value: 0.5}}}) // knob acquires

	// Remote write and a stale knob sample in one tick: CC processes first,
	// clears pickup, and the knob sample cannot take the slot back.
	e.Tick(1, Inputs{
		CCs:   []CCEvent{{Number: DefaultCCMap[ParamMotion], Value: 102}}, // ~0.8
		Knobs: []KnobSample{{Slot: ParamMotion, Value: 0.52}},
	})
	if e.Params.Slots[ParamMotion].PickupActive {
		t.Fatalf("stale knob must not re-acquire after a same-tick remote write")
	}
	if got := e.Params.Slots[ParamMotion].Raw; got != 102.0/127.0 {
		t.Fatalf("raw=%f want the remote value", got)
	}
}

func TestLearnTimeoutScalesWithForget(t *testing.T) {
	// FORGET stretches or shrinks the silence window: x2 at 0, x1 at
	// center, x0.5 at 1.
	cases := []struct {
		name    string
		forget  float64
		quietMs int64
		want    MachineState
	}{
		{"forget 0 doubles the window, still waiting", 0, 2250, StateLearning},
		{"forget 0 doubles the window, expires", 0, 3001, StateGenerating},
		{"forget 1 halves the window, still waiting", 1, 749, StateLearning},
		{"forget 1 halves the window, expires", 1, 751, StateGenerating},
		{"neutral keeps the configured window", 0.5, 1501, StateGenerating},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := New()
			e.Params.WriteFromRemote(ParamForget, tc.forget)
			e.Tick(0, noteIn(60))
			e.Tick(100, noteIn(62))
			e.Tick(200, noteIn(64))
			e.Tick(200+tc.quietMs, Inputs{})
			if e.State != tc.want {
				t.Fatalf("forget=%.1f after %dms of silence: state=%s want %s",
					tc.forget, tc.quietMs, e.State, tc.want)
			}
		})
	}
}

func TestSnapshotReflectsEngine(t *testing.T) {
	e := New()
	e.Tick(0, noteIn(60, 62, 64))

	snap := e.Snapshot()
	if snap.State != StateLearning || snap.BufferFill != 3 || snap.BufferCap != MaxLearnNotes {
		t.Fatalf("snapshot %+v does not match learning state", snap)
	}
	if snap.BPM != defaultBPM {
		t.Fatalf("snapshot BPM=%f want default before clock edges", snap.BPM)
	}
}
