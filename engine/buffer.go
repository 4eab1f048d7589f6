package engine

const (
	// MinLearnNotes is the smallest phrase the machine will accept
	MinLearnNotes = 3
	// MaxLearnNotes is the hard capture cap
	MaxLearnNotes = 32
)

// NoteBuffer captures a bounded phrase of incoming note numbers.
// Cleared and refilled on every learning episode, append-only during capture.
type NoteBuffer struct {
	notes      [MaxLearnNotes]uint8
	length     int
	lastAppend int64
}

// StartCapture clears the buffer and timestamps the start
func (b *NoteBuffer) StartCapture(now int64) {
	b.length = 0
	b.lastAppend = now
}

// Append adds a note if the buffer is not full. Out-of-range pitches are
// clamped rather than rejected.
func (b *NoteBuffer) Append(note int, now int64) {
	if b.length >= MaxLearnNotes {
		return
	}
	b.notes[b.length] = clampNote(note)
	b.length++
	b.lastAppend = now
}

// ShouldStop reports whether capture is complete: buffer full, or enough
// notes captured and the input has gone quiet.
func (b *NoteBuffer) ShouldStop(now int64, timeoutMs int64) bool {
	if b.length >= MaxLearnNotes {
		return true
	}
	return b.length >= MinLearnNotes && now-b.lastAppend > timeoutMs
}

// Len returns the current fill count
func (b *NoteBuffer) Len() int {
	return b.length
}

// Notes returns the captured notes
func (b *NoteBuffer) Notes() []uint8 {
	return b.notes[:b.length]
}

func clampNote(n int) uint8 {
	if n < 0 {
		return 0
	}
	if n > 127 {
		return 127
	}
	return uint8(n)
}
