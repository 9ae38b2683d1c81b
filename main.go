package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"go-mixsurface/app"
	"go-mixsurface/config"
	"go-mixsurface/debug"
	"go-mixsurface/midi"
	"go-mixsurface/theme"
	"go-mixsurface/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/go-mixsurface/config.yaml)")
	palettePath := flag.String("palette", "", "GIMP .gpl palette for the terminal UI")
	logPath := flag.String("log", "", "debug log file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := debug.Enable(*logPath, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
	}
	defer debug.Disable()

	palette, err := theme.LoadOrDefault(*palettePath)
	if err != nil {
		debug.Error("theme", err)
	}
	th := theme.New(palette)

	surface, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// MIDI device manager (handles hot-plug) turns the surface encoders and
	// mirrors its LEDs
	deviceMgr := midi.NewDeviceManager(cfg.AutoConnectSurfaces(), surface.Bank)
	surface.AddLEDOutput(deviceMgr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return deviceMgr.Run(ctx)
	})
	if surface.Remote != nil {
		g.Go(func() error {
			return surface.Remote.Run(ctx)
		})
	}

	m := tui.NewModel(surface, deviceMgr, th, cfg.Tick())
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})

	if err := g.Wait(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}
