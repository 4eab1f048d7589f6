package engine

import "testing"

func TestGateLengthDefaultsBeforeFirstInterval(t *testing.T) {
	c := NewClockEstimate()
	if got := GateLength(c); got != defaultGateMs {
		t.Fatalf("gate length before any clock measurement = %d, want %d", got, defaultGateMs)
	}
	c.OnTriggerEdge(0) // one edge still measures nothing
	if got := GateLength(c); got != defaultGateMs {
		t.Fatalf("gate length after a single edge = %d, want %d", got, defaultGateMs)
	}
}

func TestGateLengthIsHalfIntervalClamped(t *testing.T) {
	cases := []struct {
		intervalMs int64
		want       int64
	}{
		{500, 250},
		{100, 50},
		{30, 20},    // floor
		{2000, 500}, // ceiling
	}
	for _, tc := range cases {
		c := NewClockEstimate()
		c.OnTriggerEdge(0)
		c.OnTriggerEdge(tc.intervalMs)
		if got := GateLength(c); got != tc.want {
			t.Fatalf("interval %dms: gate=%d want %d", tc.intervalMs, got, tc.want)
		}
		if got := GateLength(c); got < minGateMs || got > maxGateMs {
			t.Fatalf("gate length %d outside [%d,%d]", got, minGateMs, maxGateMs)
		}
	}
}

func TestGatePulseTiming(t *testing.T) {
	var g GateOutput
	g.Trigger(1000, 50)
	if !g.Active {
		t.Fatalf("trigger must raise the gate")
	}

	g.Tick(1049)
	if !g.Active {
		t.Fatalf("gate must stay high before the width elapses")
	}
	g.Tick(1050)
	if g.Active {
		t.Fatalf("gate must drop once elapsed >= width")
	}

	// Retrigger restarts the pulse.
	g.Trigger(2000, 100)
	g.Tick(2099)
	if !g.Active {
		t.Fatalf("retriggered gate dropped early")
	}
	g.Tick(2100)
	if g.Active {
		t.Fatalf("retriggered gate must drop at its own deadline")
	}
}
