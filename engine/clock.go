package engine

const (
	minBPM     = 20.0
	maxBPM     = 300.0
	defaultBPM = 120.0
)

// ClockEstimate turns discrete trigger edges into an interval and a clamped
// tempo estimate. BPM is deliberately unsmoothed so tempo changes show up
// immediately; callers may smooth for display if they want.
type ClockEstimate struct {
	lastPulseTime int64
	hasPulse      bool
	Interval      int64   // ms between the last two edges (0 until two edges seen)
	BPM           float64 // clamped to [20,300], 120 until measured
}

// NewClockEstimate returns an estimator holding the default tempo
func NewClockEstimate() *ClockEstimate {
	return &ClockEstimate{BPM: defaultBPM}
}

// OnTriggerEdge records a rising edge at the given millisecond timestamp.
// The first edge only establishes a reference; no interval or BPM update.
func (c *ClockEstimate) OnTriggerEdge(now int64) {
	if c.hasPulse {
		c.Interval = now - c.lastPulseTime
		if c.Interval > 0 {
			bpm := 60000.0 / float64(c.Interval)
			if bpm < minBPM {
				bpm = minBPM
			}
			if bpm > maxBPM {
				bpm = maxBPM
			}
			c.BPM = bpm
		}
	}
	c.lastPulseTime = now
	c.hasPulse = true
}
