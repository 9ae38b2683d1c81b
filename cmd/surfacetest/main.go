package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-mixsurface/config"
	"go-mixsurface/leds"
	mididev "go-mixsurface/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		monitor()
	case "leds":
		testLEDs(os.Args[2:])
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("Control surface test scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list            - List all MIDI ports")
	fmt.Println("  monitor         - Print decoded encoder turns and switch presses")
	fmt.Println("  leds [v5|z2]    - Cycle the LED reducer through every screen")
	fmt.Println("  poll            - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! The MIDI service is hung.")
	}
}

// printer reports encoder turns as they arrive
type printer struct{}

func (printer) Turn(enc, delta int) {
	fmt.Printf("  encoder %c %+d\n", 'A'+enc, delta)
}

// withDevices runs a device manager for the configured surfaces until
// Ctrl+C, calling fn once it is running
func withDevices(fn func(ctx context.Context, dm *mididev.DeviceManager)) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Config error: %v\n", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dm := mididev.NewDeviceManager(cfg.AutoConnectSurfaces(), printer{})
	go dm.Run(ctx)

	go func() {
		for ev := range dm.Events() {
			state := "connected"
			if ev.Type == mididev.DeviceDisconnected {
				state = "disconnected"
			}
			fmt.Printf("[%s] %s %s (%s)\n", time.Now().Format("15:04:05"), ev.ID, state, ev.Kind)
		}
	}()

	fn(ctx, dm)
}

func monitor() {
	fmt.Println("Turn encoders and press switches. Ctrl+C to exit.")
	withDevices(func(ctx context.Context, dm *mididev.DeviceManager) {
		for {
			select {
			case <-ctx.Done():
				return
			case sw := <-dm.Switches():
				fmt.Printf("  switch %c %s from %s\n", 'A'+sw.Switch, sw.Press, sw.Source)
			}
		}
	})
}

var screens = []leds.Screen{
	leds.ScreenAudioMixer,
	leds.ScreenMenu,
	leds.ScreenAdmin,
	leds.ScreenControl,
	leds.ScreenPreset,
	leds.ScreenZS3,
	leds.ScreenSnapshot,
	leds.ScreenZynpad,
	leds.ScreenPatternEditor,
	leds.ScreenTempo,
}

func testLEDs(args []string) {
	rev := leds.V5
	if len(args) > 0 {
		r, ok := leds.ParseRevision(args[0])
		if !ok {
			fmt.Printf("Unknown revision %q\n", args[0])
			return
		}
		rev = r
	}

	fmt.Printf("Cycling %s LEDs through %d screens. Ctrl+C to exit.\n", rev, len(screens))
	withDevices(func(ctx context.Context, dm *mididev.DeviceManager) {
		driver := leds.NewDriver(dm, 1)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		var tick uint64
		flags := leds.Flags{Chains: 4, ActiveChain: 1, Metronome: true}
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			screen := screens[(tick/30)%uint64(len(screens))]
			if tick%30 == 0 {
				fmt.Printf("  %s\n", screen)
				driver.Reset()
			}
			frame := leds.Reduce(rev, tick, screen, flags)
			if _, err := driver.Update(frame); err != nil {
				fmt.Printf("  LED error: %v\n", err)
			}
			tick++
		}
	})
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a surface to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()

		var inNames, outNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
