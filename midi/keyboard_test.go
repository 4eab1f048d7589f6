package midi

import "testing"

func TestKeyboardCloseIsIdempotent(t *testing.T) {
	kb, err := NewKeyboardController("test", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if err := kb.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := kb.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	if _, ok := <-kb.NoteEvents(); ok {
		t.Fatalf("note channel must be closed")
	}
	if _, ok := <-kb.CCEvents(); ok {
		t.Fatalf("cc channel must be closed")
	}
}

func TestKeyboardDeliverAfterCloseDoesNotPanic(t *testing.T) {
	kb, err := NewKeyboardController("test", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	kb.Close()

	// A driver callback can still fire after Close; it must be dropped,
	// not sent into a closed channel.
	kb.deliverNote(NoteEvent{Note: 60, Velocity: 100})
	kb.deliverCC(CCEvent{Number: 70, Value: 64})
}

func TestKeyboardDeliverDropsWhenFull(t *testing.T) {
	kb, err := NewKeyboardController("test", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer kb.Close()

	for i := 0; i < cap(kb.noteChan)+10; i++ {
		kb.deliverNote(NoteEvent{Note: uint8(60 + i%12), Velocity: 100})
	}
	if len(kb.noteChan) != cap(kb.noteChan) {
		t.Fatalf("overflow must drop, len=%d cap=%d", len(kb.noteChan), cap(kb.noteChan))
	}
}
