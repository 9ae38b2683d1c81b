package midi

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-mixsurface/config"
	"go-mixsurface/debug"
	"go-mixsurface/surface"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type DeviceEventType
	ID   string
	Kind ControllerType
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of control surfaces
type DeviceManager struct {
	surfaces    []config.SurfaceConfig
	out         sink
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	switches    chan SwitchEvent
	pollRate    time.Duration
}

// NewDeviceManager creates a device manager that feeds enc and opens the
// configured surfaces plus any Launchpad X
func NewDeviceManager(surfaces []config.SurfaceConfig, enc Turner) *DeviceManager {
	dm := &DeviceManager{
		surfaces:    surfaces,
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		switches:    make(chan SwitchEvent, 32),
		pollRate:    time.Second,
	}
	dm.out = sink{enc: enc, switches: dm.switches}
	return dm
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Switches returns released switch presses from every controller
func (dm *DeviceManager) Switches() <-chan SwitchEvent {
	return dm.switches
}

// Controllers returns the connected controller IDs, sorted
func (dm *DeviceManager) Controllers() []string {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	ids := make([]string, 0, len(dm.controllers))
	for id := range dm.controllers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SetLED writes an LED to every connected controller
func (dm *DeviceManager) SetLED(index int, r, g, b uint8) error {
	dm.mu.RLock()
	fan := make(surface.Fanout, 0, len(dm.controllers))
	for _, c := range dm.controllers {
		fan = append(fan, c)
	}
	dm.mu.RUnlock()
	return fan.SetLED(index, r, g, b)
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) error {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return nil
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	type portsResult struct {
		inPorts  []drivers.In
		outPorts []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{inPorts: gomidi.GetInPorts(), outPorts: gomidi.GetOutPorts()}
	}()

	var inPorts []drivers.In
	var outPorts []drivers.Out

	select {
	case result := <-ch:
		inPorts = result.inPorts
		outPorts = result.outPorts
	case <-time.After(3 * time.Second):
		debug.LogEvery(10, "midi", "port scan timed out")
		return
	}

	seenIDs := make(map[string]bool)

	for _, inPort := range inPorts {
		id := inPort.String()
		kind, cfg := dm.match(id)
		if kind == ControllerUnknown {
			continue
		}
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		outPort := findOut(outPorts, id)
		var c Controller
		var err error
		if kind == ControllerLaunchpad {
			c, err = NewLaunchpadController(id, inPort, outPort, dm.out)
		} else {
			c, err = NewSurfaceController(id, cfg, inPort, outPort, dm.out)
		}
		if err != nil {
			debug.Error("midi", err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()

		debug.Log("midi", "connected %s (%v)", id, kind)
		dm.events <- DeviceEvent{Type: DeviceConnected, ID: id, Kind: kind}
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		c := dm.controllers[id]
		c.Close()
		delete(dm.controllers, id)
		debug.Log("midi", "disconnected %s", id)
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id, Kind: c.Type()}
	}
	dm.mu.Unlock()
}

// match decides whether a port is a surface we drive
func (dm *DeviceManager) match(portName string) (ControllerType, config.SurfaceConfig) {
	if isLaunchpad(portName) {
		return ControllerLaunchpad, config.SurfaceConfig{}
	}
	if cfg, ok := matchSurface(dm.surfaces, portName); ok {
		return ControllerSurface, cfg
	}
	return ControllerUnknown, config.SurfaceConfig{}
}

func matchSurface(surfaces []config.SurfaceConfig, portName string) (config.SurfaceConfig, bool) {
	name := strings.ToLower(portName)
	for _, s := range surfaces {
		if s.AutoConnect && s.PortName != "" && strings.Contains(name, strings.ToLower(s.PortName)) {
			return s, true
		}
	}
	return config.SurfaceConfig{}, false
}

func findOut(outs []drivers.Out, name string) drivers.Out {
	lower := strings.ToLower(name)
	for _, op := range outs {
		if strings.ToLower(op.String()) == lower {
			return op
		}
	}
	return nil
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
