package engine

// Parameter identity - stable indices used by the CC map and the generator.
// Layout follows the hardware panel: three pages of four pots.
const (
	ParamMotion = iota
	ParamMemory
	ParamRegister
	ParamDirection
	ParamPhrase
	ParamEnergy
	ParamStability
	ParamForget
	ParamLeapShape
	ParamDirectionMemory
	ParamHomeRegister
	ParamRangeWidth

	NumParams
)

// ParamNames holds the panel label for each slot
var ParamNames = [NumParams]string{
	"MOTION", "MEMORY", "REGISTER", "DIRECTION",
	"PHRASE", "ENERGY", "STABILITY", "FORGET",
	"LEAP SHP", "DIR MEM", "HOME REG", "RANGE",
}

// DefaultCCMap assigns one distinct CC number per slot, in slot order
var DefaultCCMap = [NumParams]uint8{70, 71, 72, 73, 74, 75, 76, 77, 78, 79, 80, 81}

const (
	// One-pole smoothing coefficient. Lower = more smoothing.
	smoothingCoeff = 0.15

	// Knob must come within this distance of the stored value to take over
	pickupThreshold = 0.05
)

// Param is one continuous control slot with soft-takeover arbitration
// between the physical knob and remote CC writes.
type Param struct {
	Raw           float64 // last value written by the owning source
	Smoothed      float64 // exponentially filtered value for display/use
	PickupActive  bool    // knob currently owns this slot
	lastKnobValue float64 // previous knob sample, for crossing detection
}

// Params is the full parameter store
type Params struct {
	Slots [NumParams]Param
}

// NewParams creates the store with every slot at the neutral default
func NewParams() *Params {
	p := &Params{}
	for i := range p.Slots {
		p.Slots[i] = Param{Raw: 0.5, Smoothed: 0.5}
	}
	return p
}

// WriteFromController is the physical-knob path. The write only lands while
// the knob owns the slot; otherwise the sample is used for pickup
// arbitration so the knob can re-acquire without a value jump.
func (p *Params) WriteFromController(slot int, value float64) {
	if slot < 0 || slot >= NumParams {
		return
	}
	value = clamp01(value)
	s := &p.Slots[slot]

	if !s.PickupActive {
		// Activate on proximity or on crossing the stored value.
		// Crossing check is inclusive on both sides, matching the source.
		crossed := (s.lastKnobValue <= s.Raw && s.Raw <= value) ||
			(value <= s.Raw && s.Raw <= s.lastKnobValue)
		if absf(value-s.Raw) < pickupThreshold || crossed {
			s.PickupActive = true
		}
	}

	if s.PickupActive {
		s.Raw = value
	}
	s.lastKnobValue = value
}

// WriteFromRemote is the CC path. It lands unconditionally, skips the
// smoothing ramp, and forces the knob to re-acquire.
func (p *Params) WriteFromRemote(slot int, value float64) {
	if slot < 0 || slot >= NumParams {
		return
	}
	value = clamp01(value)
	s := &p.Slots[slot]
	s.Raw = value
	s.Smoothed = value
	s.PickupActive = false
}

// Tick advances every smoothed value one exponential step
func (p *Params) Tick() {
	for i := range p.Slots {
		s := &p.Slots[i]
		s.Smoothed += smoothingCoeff * (s.Raw - s.Smoothed)
	}
}

// Get returns the smoothed value for a slot (0.5 for out-of-range slots)
func (p *Params) Get(slot int) float64 {
	if slot < 0 || slot >= NumParams {
		return 0.5
	}
	return p.Slots[slot].Smoothed
}

// ParamSnapshot is the read-only per-slot view handed to the display
type ParamSnapshot struct {
	Name     string
	Smoothed float64
	Pickup   bool
}

// Snapshot returns display values for all slots
func (p *Params) Snapshot() [NumParams]ParamSnapshot {
	var out [NumParams]ParamSnapshot
	for i := range p.Slots {
		out[i] = ParamSnapshot{
			Name:     ParamNames[i],
			Smoothed: p.Slots[i].Smoothed,
			Pickup:   p.Slots[i].PickupActive,
		}
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
