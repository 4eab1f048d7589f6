package midi

// NoteEvent is sent when a note is played on the input keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
}

// CCEvent is sent when a control change arrives on the input
type CCEvent struct {
	Number  uint8
	Value   uint8
	Channel uint8
}
