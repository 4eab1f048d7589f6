// miditest lists MIDI ports and monitors incoming note/CC traffic.
// Useful for finding the port substrings to put in the config.
package main

import (
	"fmt"
	"os"
	"os/signal"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	defer gomidi.CloseDriver()

	fmt.Println("Input ports:")
	for i, port := range gomidi.GetInPorts() {
		fmt.Printf("  [%d] %s\n", i, port)
	}
	fmt.Println("Output ports:")
	for i, port := range gomidi.GetOutPorts() {
		fmt.Printf("  [%d] %s\n", i, port)
	}

	inPorts := gomidi.GetInPorts()
	if len(inPorts) == 0 {
		fmt.Println("no input ports, exiting")
		return
	}

	fmt.Printf("\nmonitoring %s (ctrl+c to quit)\n", inPorts[0])
	stop, err := gomidi.ListenTo(inPorts[0], func(msg gomidi.Message, timestampms int32) {
		var ch, note, vel, cc, val uint8
		switch {
		case msg.GetNoteOn(&ch, &note, &vel):
			fmt.Printf("note on  ch=%d note=%d vel=%d\n", ch, note, vel)
		case msg.GetNoteOff(&ch, &note, &vel):
			fmt.Printf("note off ch=%d note=%d\n", ch, note)
		case msg.GetControlChange(&ch, &cc, &val):
			fmt.Printf("cc       ch=%d num=%d val=%d\n", ch, cc, val)
		}
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	<-sig
}
