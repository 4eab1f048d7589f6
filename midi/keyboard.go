package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// KeyboardController listens to a MIDI keyboard/controller input port and
// delivers decoded note-on and control-change events.
type KeyboardController struct {
	id       string
	inPort   drivers.In
	stopFunc func()

	mu       sync.Mutex
	closed   bool
	noteChan chan NoteEvent
	ccChan   chan CCEvent
}

// NewKeyboardController opens the input port and starts listening
func NewKeyboardController(id string, inPort drivers.In) (*KeyboardController, error) {
	kb := &KeyboardController{
		id:       id,
		inPort:   inPort,
		noteChan: make(chan NoteEvent, 32),
		ccChan:   make(chan CCEvent, 32),
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			var channel, note, velocity uint8
			var cc, val uint8
			switch {
			case msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0:
				kb.deliverNote(NoteEvent{Note: note, Velocity: velocity, Channel: channel})
			case msg.GetControlChange(&channel, &cc, &val):
				kb.deliverCC(CCEvent{Number: cc, Value: val, Channel: channel})
			}
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		kb.stopFunc = stop
	}

	return kb, nil
}

func (kb *KeyboardController) ID() string {
	return kb.id
}

func (kb *KeyboardController) NoteEvents() <-chan NoteEvent {
	return kb.noteChan
}

func (kb *KeyboardController) CCEvents() <-chan CCEvent {
	return kb.ccChan
}

// deliverNote drops events on a full channel. The closed check holds the
// mutex so a driver callback racing Close can never hit a closed channel.
func (kb *KeyboardController) deliverNote(ev NoteEvent) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return
	}
	select {
	case kb.noteChan <- ev:
	default:
	}
}

func (kb *KeyboardController) deliverCC(ev CCEvent) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return
	}
	select {
	case kb.ccChan <- ev:
	default:
	}
}

// Close stops the listener and closes the event channels. Safe to call
// more than once.
func (kb *KeyboardController) Close() error {
	if kb.stopFunc != nil {
		kb.stopFunc()
	}

	kb.mu.Lock()
	defer kb.mu.Unlock()
	if kb.closed {
		return nil
	}
	kb.closed = true
	close(kb.noteChan)
	close(kb.ccChan)
	return nil
}
