package engine

// IntervalBuckets covers unison through octave; larger leaps clamp into
// the octave bucket.
const IntervalBuckets = 13

// Tendencies is the statistical summary of a captured phrase. Recomputed
// wholesale on each learning->generating transition, never incrementally.
type Tendencies struct {
	Intervals [IntervalBuckets]int

	Ascending  int
	Descending int
	Repeats    int

	RegisterMin    uint8
	RegisterMax    uint8
	RegisterCenter float64 // mean pitch of the phrase
	RegisterRange  int

	CommonInterval       int // most frequent bucket
	SecondCommonInterval int // runner-up bucket
}

// Analyze derives Tendencies from the buffer. Fewer than two notes yields a
// zeroed result; the generator treats an empty histogram as "no data".
func Analyze(b *NoteBuffer) Tendencies {
	var t Tendencies
	notes := b.Notes()
	if len(notes) < 2 {
		return t
	}

	t.RegisterMin = 127
	sum := 0
	for _, n := range notes {
		if n < t.RegisterMin {
			t.RegisterMin = n
		}
		if n > t.RegisterMax {
			t.RegisterMax = n
		}
		sum += int(n)
	}
	t.RegisterCenter = float64(sum) / float64(len(notes))
	t.RegisterRange = int(t.RegisterMax) - int(t.RegisterMin)

	for i := 1; i < len(notes); i++ {
		d := int(notes[i]) - int(notes[i-1])
		switch {
		case d > 0:
			t.Ascending++
		case d < 0:
			t.Descending++
		default:
			t.Repeats++
		}
		if d < 0 {
			d = -d
		}
		if d > 12 {
			d = 12
		}
		t.Intervals[d]++
	}

	// Ascending scan, first bucket to reach the running max wins ties.
	best, bestCount := 0, -1
	for i := 0; i < IntervalBuckets; i++ {
		if t.Intervals[i] > bestCount {
			best = i
			bestCount = t.Intervals[i]
		}
	}
	t.CommonInterval = best

	second, secondCount := 0, -1
	for i := 0; i < IntervalBuckets; i++ {
		if i == best {
			continue
		}
		if t.Intervals[i] > secondCount {
			second = i
			secondCount = t.Intervals[i]
		}
	}
	t.SecondCommonInterval = second

	return t
}

// TotalIntervals returns the histogram mass (0 means no data)
func (t *Tendencies) TotalIntervals() int {
	total := 0
	for _, c := range t.Intervals {
		total += c
	}
	return total
}
