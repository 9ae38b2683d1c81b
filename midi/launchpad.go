package midi

import (
	"sync/atomic"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-mixsurface/debug"
	"go-mixsurface/surface"
)

var ledSendCount uint64

// LaunchpadController drives a Novation Launchpad X as a mixer surface:
// the grid mirrors the LED strip, scene buttons are the encoder switches and
// the top row steps the encoders down/up in pairs.
type LaunchpadController struct {
	id       string
	send     func(msg gomidi.Message) error
	stopFunc func()
	dec      *launchpadDecoder
}

type launchpadDecoder struct {
	id      string
	out     sink
	presses *pressTracker
}

// Scene buttons used as switches A-D, top down
var sceneSwitches = [surface.NumEncoders]int{7, 6, 5, 4}

func sceneSwitch(row int) int {
	for sw, r := range sceneSwitches {
		if r == row {
			return sw
		}
	}
	return -1
}

func (d *launchpadDecoder) handle(msg gomidi.Message) {
	var channel, note, velocity, cc, value uint8

	if msg.GetControlChange(&channel, &cc, &value) {
		// top row: 91/92 turn A down/up, 93/94 B, ...
		row, col := ccToRowCol(cc)
		if row < 0 || value == 0 {
			return
		}
		delta := -1
		if col%2 == 1 {
			delta = 1
		}
		d.out.turn(col/2, delta)
		return
	}

	on := msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0
	off := !on && (msg.GetNoteOn(&channel, &note, &velocity) || msg.GetNoteOff(&channel, &note, &velocity))
	if !on && !off {
		return
	}
	row, col := noteToRowCol(note)
	if col != 8 {
		return
	}
	sw := sceneSwitch(row)
	if sw < 0 {
		return
	}
	if on {
		d.presses.press(sw)
		return
	}
	if held, ok := d.presses.release(sw); ok {
		d.out.press(SwitchEvent{Source: d.id, Switch: sw, Press: classify(held, 0, 0)})
	}
}

// NewLaunchpadController creates and configures a Launchpad
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out, out sink) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:  id,
		dec: &launchpadDecoder{id: id, out: out, presses: newPressTracker()},
	}

	// Open output
	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, errors.Wrap(err, "open output")
		}
		lp.send = send

		// Programmer mode: F0 00 20 29 02 0C 00 7F F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}))

		// Full brightness: F0 00 20 29 02 0C 08 <brightness> F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}))

		// External LED feedback: F0 00 20 29 02 0C 0A 01 01 F7
		lp.send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}))

		// scene buttons and top row are always lit as controls
		for _, row := range sceneSwitches {
			lp.send(gomidi.NoteOn(0, rowColToNote(row, 8), ColorWhite))
		}
		for col := 0; col < 8; col++ {
			lp.send(gomidi.NoteOn(0, rowColToNote(8, col), ColorDimBlue))
		}
	}

	// Open input
	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			lp.dec.handle(msg)
		})
		if err != nil {
			return nil, errors.Wrap(err, "open input")
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

// SetLED lights grid pad i, counting rows from the top left
func (lp *LaunchpadController) SetLED(index int, r, g, b uint8) error {
	if lp.send == nil {
		return nil
	}
	row, col, ok := ledToRowCol(index)
	if !ok {
		return errors.Errorf("led %d off the grid", index)
	}
	count := atomic.AddUint64(&ledSendCount, 1)
	if count%100 == 0 {
		debug.Log("lp-send", "led count=%d", count)
	}
	return lp.send(gomidi.NoteOn(ChannelStatic, rowColToNote(row, col), nearestVelocity(r, g, b)))
}

func (lp *LaunchpadController) Close() error {
	if lp.send != nil {
		for row := 0; row < 9; row++ {
			for col := 0; col < 9; col++ {
				if row == 8 && col == 8 {
					continue // no LED at 8,8
				}
				lp.send(gomidi.NoteOn(ChannelStatic, rowColToNote(row, col), ColorOff))
			}
		}
	}
	if lp.stopFunc != nil {
		lp.stopFunc()
	}
	return nil
}

// Launchpad X palette velocities used for the fixed controls
const (
	ColorOff     uint8 = 0
	ColorWhite   uint8 = 3
	ColorDimBlue uint8 = 43

	ChannelStatic uint8 = 0
)

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (right side scene buttons) = notes 19, 29, 39, 49, 59, 69, 79, 89
// Top row:   Row 8 (top control row) = CC 91-98

// ledToRowCol lays the LED strip across the grid from the top row down
func ledToRowCol(i int) (row, col int, ok bool) {
	if i < 0 || i >= 64 {
		return 0, 0, false
	}
	return 7 - i/8, i % 8, true
}

func rowColToNote(row, col int) uint8 {
	// Top row uses CC, but for LED control we use notes 91-98
	if row == 8 {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	if note >= 91 && note <= 98 {
		return 8, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	// 8x8 grid plus the side column
	if row < 0 || row > 7 || col < 0 || col > 8 {
		return -1, -1
	}
	return row, col
}

func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return 8, int(cc - 91)
	}
	return -1, -1
}
