package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli"

	"go-generative/config"
	"go-generative/debug"
	"go-generative/engine"
	"go-generative/midi"
	"go-generative/tui"
)

var version string

func main() {
	app := cli.NewApp()
	app.Version = version
	app.Name = "go-generative"
	app.Usage = "learn a phrase from live MIDI input and generate an endless stylistic continuation"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "bpm",
			Value: 0,
			Usage: "internal clock tempo (overrides config)",
		},
		cli.IntFlag{
			Name:  "tick",
			Value: 0,
			Usage: "control-rate tick frequency in hertz (overrides config)",
		},
		cli.IntFlag{
			Name:  "timeout",
			Value: 0,
			Usage: "learning silence timeout in ms (overrides config)",
		},
		cli.StringFlag{
			Name:  "in",
			Usage: "MIDI input port substring (overrides config)",
		},
		cli.StringFlag{
			Name:  "out",
			Usage: "MIDI output port substring (overrides config)",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "write a debug log to the config directory",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := c.Int("bpm"); v > 0 {
		cfg.InternalTempo = v
	}
	if v := c.Int("tick"); v > 0 {
		cfg.TickRate = v
	}
	if v := c.Int("timeout"); v > 0 {
		cfg.LearnTimeoutMs = v
	}
	if v := c.String("in"); v != "" {
		cfg.InputPort = v
	}
	if v := c.String("out"); v != "" {
		cfg.OutputPort = v
	}

	if c.Bool("debug") {
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("enable debug log: %w", err)
		}
		defer debug.Disable()
	}

	channel := uint8(0)
	if cfg.Channel >= 1 && cfg.Channel <= 16 {
		channel = uint8(cfg.Channel - 1)
	}

	manager := engine.NewManager(cfg.TickRate, cfg.InternalTempo, channel)
	manager.Engine().LearnTimeoutMs = int64(cfg.LearnTimeoutMs)
	if len(cfg.CCMap) == engine.NumParams {
		for i, cc := range cfg.CCMap {
			manager.Engine().CCMap[i] = uint8(cc)
		}
	}

	// MIDI output (optional - the TUI still works without a synth attached)
	sender, portName, err := midi.OpenSender(cfg.OutputPort)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	if sender != nil {
		manager.SetSender(sender)
		debug.Log("midi", "output port: %s", portName)
	}

	// MIDI input hot-plug
	deviceMgr := midi.NewDeviceManager(cfg.InputPort)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deviceMgr.Run(ctx)

	manager.StartRuntime()
	defer manager.Stop()

	m := tui.NewModel(manager, deviceMgr)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
