package engine

import "testing"

func TestClockFirstEdgeProducesNoEstimate(t *testing.T) {
	c := NewClockEstimate()
	c.OnTriggerEdge(1000)
	if c.Interval != 0 {
		t.Fatalf("single edge must not produce an interval, got %d", c.Interval)
	}
	if c.BPM != defaultBPM {
		t.Fatalf("single edge must hold the default tempo, got %f", c.BPM)
	}
}

func TestClockTempoEstimates(t *testing.T) {
	cases := []struct {
		name       string
		intervalMs int64
		wantBPM    float64
	}{
		{"500ms is 120bpm", 500, 120},
		{"100ms clamps to ceiling", 100, 300},
		{"5000ms clamps to floor", 5000, 20},
		{"1000ms is 60bpm", 1000, 60},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewClockEstimate()
			c.OnTriggerEdge(0)
			c.OnTriggerEdge(tc.intervalMs)
			if c.Interval != tc.intervalMs {
				t.Fatalf("interval=%d want %d", c.Interval, tc.intervalMs)
			}
			if c.BPM != tc.wantBPM {
				t.Fatalf("bpm=%f want %f", c.BPM, tc.wantBPM)
			}
		})
	}
}

func TestClockZeroIntervalKeepsTempo(t *testing.T) {
	c := NewClockEstimate()
	c.OnTriggerEdge(0)
	c.OnTriggerEdge(500)
	c.OnTriggerEdge(500) // duplicate edge timestamp
	if c.BPM != 120 {
		t.Fatalf("zero interval must not update tempo, got %f", c.BPM)
	}
}

func TestClockReactsImmediately(t *testing.T) {
	c := NewClockEstimate()
	c.OnTriggerEdge(0)
	c.OnTriggerEdge(500)
	c.OnTriggerEdge(750) // tempo doubles
	if c.BPM != 240 {
		t.Fatalf("tempo must follow the last interval with no smoothing, got %f", c.BPM)
	}
}
