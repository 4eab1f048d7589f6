package engine

const (
	minGateMs     = 20
	maxGateMs     = 500
	defaultGateMs = 50
)

// GateOutput is a timed digital pulse. Triggered on each generated note,
// cleared by polling Tick once the width has elapsed.
type GateOutput struct {
	Active    bool
	startTime int64
	lengthMs  int64
}

// Trigger sets the output high for lengthMs milliseconds
func (g *GateOutput) Trigger(now int64, lengthMs int64) {
	g.Active = true
	g.startTime = now
	g.lengthMs = lengthMs
}

// Tick lowers the output once the pulse has elapsed
func (g *GateOutput) Tick(now int64) {
	if g.Active && now-g.startTime >= g.lengthMs {
		g.Active = false
	}
}

// GateLength derives a pulse width from the last measured clock interval:
// half the interval, clamped, with a fixed default before the first
// measurement.
func GateLength(c *ClockEstimate) int64 {
	if c.Interval <= 0 {
		return defaultGateMs
	}
	length := c.Interval / 2
	if length < minGateMs {
		length = minGateMs
	}
	if length > maxGateMs {
		length = maxGateMs
	}
	return length
}
