package engine

const (
	historySize      = 8
	maxAcceptRetries = 4

	fallbackInterval = 2 // whole step when no histogram data

	minPhraseLength = 4
	maxPhraseLength = 32
)

// GenerationState is the rolling state of the note generator. Re-initialized
// at every learning->generating transition.
type GenerationState struct {
	CurrentNote     uint8
	PreviousNote    uint8
	LastInterval    int // signed semitones
	LastDirectionUp bool

	history [historySize]uint8 // circular, oldest overwritten
	histLen int
	histPos int

	PhraseNoteCount    int
	PhraseTargetLength int

	RNG RNG
}

// Reinit seeds the generator from the analyzed phrase: current note at the
// register center, history and phrase counters cleared, RNG reseeded from
// the time source.
func (g *GenerationState) Reinit(t *Tendencies, params *Params, now int64) {
	center := t.RegisterCenter
	if t.TotalIntervals() == 0 {
		center = 60
	}
	g.CurrentNote = clampNote(int(center + 0.5))
	g.PreviousNote = g.CurrentNote
	g.LastInterval = 0
	g.LastDirectionUp = true
	g.histLen = 0
	g.histPos = 0
	g.PhraseNoteCount = 0
	g.RNG.Seed(uint32(now))
	g.PhraseTargetLength = phraseTarget(params.Get(ParamPhrase))
}

func phraseTarget(phrase float64) int {
	target := minPhraseLength + int(phrase*float64(maxPhraseLength-minPhraseLength)+0.5)
	if target < minPhraseLength {
		target = minPhraseLength
	}
	if target > maxPhraseLength {
		target = maxPhraseLength
	}
	return target
}

// GenerateNext produces the next note from the live parameter values and
// the tendency summary. Always returns a valid MIDI note; the memory-bias
// retry loop is bounded and never blocks generation.
func (g *GenerationState) GenerateNext(params *Params, t *Tendencies, now int64) uint8 {
	energyDev := (params.Get(ParamEnergy) - 0.5) * 2

	var candidate uint8
	var signedInterval int
	var directionUp bool

	for attempt := 0; attempt < maxAcceptRetries; attempt++ {
		interval := g.sampleInterval(t, params)
		interval = g.rescaleInterval(interval, params, energyDev)
		directionUp = g.chooseDirection(t, params, energyDev)

		signedInterval = interval
		if !directionUp {
			signedInterval = -interval
		}
		candidate = clampNote(int(g.CurrentNote) + signedInterval)
		candidate = g.applyOctaveDisplacement(candidate, params, energyDev)

		if g.acceptCandidate(candidate, params, energyDev) {
			break
		}
		// After the final attempt the last candidate stands unconditionally.
	}

	g.pushHistory(candidate)
	g.advancePhrase(params, now)

	g.PreviousNote = g.CurrentNote
	g.CurrentNote = candidate
	g.LastInterval = int(candidate) - int(g.PreviousNote)
	g.LastDirectionUp = directionUp
	return candidate
}

// sampleInterval draws an interval size from the learned histogram with
// inverse-transform sampling. LEAP SHAPE above center occasionally swaps
// the most-common bucket for the runner-up.
func (g *GenerationState) sampleInterval(t *Tendencies, params *Params) int {
	total := t.TotalIntervals()
	if total == 0 {
		return fallbackInterval
	}

	draw := g.RNG.IntN(total)
	interval := 0
	cum := 0
	for i := 0; i < IntervalBuckets; i++ {
		cum += t.Intervals[i]
		if draw < cum {
			interval = i
			break
		}
	}

	leap := params.Get(ParamLeapShape)
	if interval == t.CommonInterval && leap > 0.5 {
		if g.RNG.Float64() < (leap-0.5)*2*0.5 {
			interval = t.SecondCommonInterval
		}
	}
	return interval
}

// rescaleInterval applies the MOTION macro: below center compresses toward
// smaller steps, above center stretches by up to four semitones.
func (g *GenerationState) rescaleInterval(interval int, params *Params, energyDev float64) int {
	motion := clamp01(params.Get(ParamMotion) + energyDev*0.2)

	if motion < 0.5 {
		interval = int(float64(interval)*motion*2 + 0.5)
		if interval == 0 {
			// Prefer steps over exact repeats.
			if g.RNG.Float64() < 0.5 {
				interval = 1
			}
		}
	} else if motion > 0.5 {
		stretch := (motion - 0.5) * 2
		extra := int(stretch*4 + 0.5)
		if extra > 0 {
			interval += g.RNG.IntN(extra + 1)
		}
	}
	return interval
}

// chooseDirection blends the learned ascent ratio, the DIRECTION macro,
// register gravity, and direction persistence into one up-probability.
func (g *GenerationState) chooseDirection(t *Tendencies, params *Params, energyDev float64) bool {
	upRatio := 0.5
	if t.Ascending+t.Descending > 0 {
		upRatio = float64(t.Ascending) / float64(t.Ascending+t.Descending)
	}

	// DIRECTION has full weight pinned at either extreme, none at center.
	dir := params.Get(ParamDirection)
	w := absf(dir-0.5) * 2
	p := upRatio*(1-w) + dir*w

	// Register gravity pulls back toward the learned center, reduced by
	// energy and boosted near the end of the phrase.
	gravity := clamp01(params.Get(ParamRegister) - energyDev*0.2)
	if g.PhraseTargetLength > 0 {
		progress := float64(g.PhraseNoteCount) / float64(g.PhraseTargetLength)
		if progress > 0.7 {
			boost := (progress - 0.7) / 0.3 * 0.3
			if boost > 0.3 {
				boost = 0.3
			}
			gravity += boost
		}
	}
	center := t.RegisterCenter
	if t.TotalIntervals() == 0 {
		center = 60
	}
	center += (params.Get(ParamHomeRegister) - 0.5) * 24
	deviation := (float64(g.CurrentNote) - center) / 24
	if deviation > 1 {
		deviation = 1
	}
	if deviation < -1 {
		deviation = -1
	}
	p += -deviation * gravity * 0.5

	// Direction persistence.
	dirMem := params.Get(ParamDirectionMemory)
	if g.LastDirectionUp {
		p += (dirMem - 0.5) * 0.5
	} else {
		p -= (dirMem - 0.5) * 0.5
	}

	p = clamp01(p)
	return g.RNG.Float64() < p
}

// applyOctaveDisplacement occasionally throws the candidate up or down by
// whole octaves, per the RANGE macro. Never leaves the MIDI range.
func (g *GenerationState) applyOctaveDisplacement(note uint8, params *Params, energyDev float64) uint8 {
	rangeWidth := clamp01(params.Get(ParamRangeWidth) + energyDev*0.2)
	prob := rangeWidth * 0.2
	prob = clamp01(prob * (1.5 - params.Get(ParamStability)))

	if g.RNG.Float64() >= prob {
		return note
	}

	var shift int
	if rangeWidth < 0.5 {
		if g.RNG.Float64() < 0.5 {
			shift = 12
		} else {
			shift = -12
		}
	} else {
		draw := g.RNG.Float64()
		switch {
		case draw < 0.5:
			shift = 12
		case draw < 0.75:
			shift = -12
		case draw < 0.875:
			shift = 24
		default:
			shift = -24
		}
	}
	return clampNote(int(note) + shift)
}

// acceptCandidate applies memory bias: notes absent from the recent history
// always pass; repeats pass with a probability shaped by the MEMORY macro.
func (g *GenerationState) acceptCandidate(note uint8, params *Params, energyDev float64) bool {
	count := g.historyCount(note, g.memoryWindow(params))
	if count == 0 {
		return true
	}

	// High energy pushes toward novelty regardless of the knob.
	memory := params.Get(ParamMemory)
	if energyDev > 0 {
		memory = clamp01(memory - energyDev*0.3)
	}

	var accept float64
	switch {
	case memory < 0.4:
		novelty := (0.4 - memory) / 0.4
		accept = 1 - novelty*float64(count)*0.25
	case memory > 0.6:
		repetition := (memory - 0.6) / 0.4
		accept = 0.6 + repetition*float64(count)*0.25
	default:
		accept = 1
	}
	accept = clamp01(accept)
	return g.RNG.Float64() < accept
}

// memoryWindow shrinks the considered history above FORGET center
func (g *GenerationState) memoryWindow(params *Params) int {
	forget := params.Get(ParamForget)
	if forget <= 0.5 {
		return historySize
	}
	window := historySize - int((forget-0.5)*2*float64(historySize-2)+0.5)
	if window < 2 {
		window = 2
	}
	return window
}

// historyCount counts occurrences of note among the last window entries
func (g *GenerationState) historyCount(note uint8, window int) int {
	if window > g.histLen {
		window = g.histLen
	}
	count := 0
	for i := 0; i < window; i++ {
		idx := (g.histPos - 1 - i + historySize*2) % historySize
		if g.history[idx] == note {
			count++
		}
	}
	return count
}

func (g *GenerationState) pushHistory(note uint8) {
	g.history[g.histPos] = note
	g.histPos = (g.histPos + 1) % historySize
	if g.histLen < historySize {
		g.histLen++
	}
}

// advancePhrase bumps the phrase counter and probabilistically resets once
// the soft target is exceeded. Reset reseeds the RNG to avoid long-run
// correlation between phrases.
func (g *GenerationState) advancePhrase(params *Params, now int64) {
	g.PhraseNoteCount++
	if g.PhraseNoteCount < g.PhraseTargetLength {
		return
	}
	overrun := float64(g.PhraseNoteCount-g.PhraseTargetLength) / float64(g.PhraseTargetLength)
	prob := 0.5 + 0.5*overrun
	if prob > 1 {
		prob = 1
	}
	if g.RNG.Float64() < prob {
		g.PhraseNoteCount = 0
		g.PhraseTargetLength = phraseTarget(params.Get(ParamPhrase))
		g.RNG.Seed(uint32(now))
	}
}
