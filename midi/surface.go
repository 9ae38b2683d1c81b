package midi

import (
	"time"

	"github.com/pkg/errors"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-mixsurface/config"
	"go-mixsurface/debug"
)

// SurfaceController is a generic knob box: relative CC encoders, note push
// switches and note-addressed LEDs
type SurfaceController struct {
	id       string
	cfg      config.SurfaceConfig
	send     func(msg gomidi.Message) error
	stopFunc func()
	dec      *surfaceDecoder
}

// surfaceDecoder turns incoming messages into encoder turns and switch
// presses
type surfaceDecoder struct {
	id      string
	cfg     config.SurfaceConfig
	out     sink
	presses *pressTracker
}

func (d *surfaceDecoder) encoderFor(cc uint8) int {
	for i, c := range d.cfg.EncoderCCs {
		if int(cc) == c {
			return i
		}
	}
	return -1
}

func (d *surfaceDecoder) switchFor(note uint8) int {
	for i, n := range d.cfg.SwitchNotes {
		if int(note) == n {
			return i
		}
	}
	return -1
}

func (d *surfaceDecoder) handle(msg gomidi.Message) {
	var channel, key, velocity, cc, value uint8

	switch {
	case msg.GetControlChange(&channel, &cc, &value):
		if int(channel) != d.cfg.Channel {
			return
		}
		if enc := d.encoderFor(cc); enc >= 0 {
			d.out.turn(enc, relativeDelta(value))
		}

	case msg.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
		if sw := d.switchFor(key); sw >= 0 && int(channel) == d.cfg.Channel {
			d.presses.press(sw)
		}

	case msg.GetNoteOn(&channel, &key, &velocity), msg.GetNoteOff(&channel, &key, &velocity):
		if int(channel) != d.cfg.Channel {
			return
		}
		sw := d.switchFor(key)
		if sw < 0 {
			return
		}
		held, ok := d.presses.release(sw)
		if !ok {
			return
		}
		press := classify(held,
			time.Duration(d.cfg.BoldPress)*time.Millisecond,
			time.Duration(d.cfg.LongPress)*time.Millisecond)
		debug.Log("surface", "%s switch %d %v (%v)", d.id, sw, press, held)
		d.out.press(SwitchEvent{Source: d.id, Switch: sw, Press: press})
	}
}

// NewSurfaceController opens a configured surface
func NewSurfaceController(id string, cfg config.SurfaceConfig, inPort drivers.In, outPort drivers.Out, out sink) (*SurfaceController, error) {
	sc := &SurfaceController{
		id:  id,
		cfg: cfg,
		dec: &surfaceDecoder{id: id, cfg: cfg, out: out, presses: newPressTracker()},
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, errors.Wrap(err, "open output")
		}
		sc.send = send
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			sc.dec.handle(msg)
		})
		if err != nil {
			return nil, errors.Wrap(err, "open input")
		}
		sc.stopFunc = stop
	}

	return sc, nil
}

func (sc *SurfaceController) ID() string {
	return sc.id
}

func (sc *SurfaceController) Type() ControllerType {
	return ControllerSurface
}

// SetLED sends LED i as a note with the nearest palette velocity
func (sc *SurfaceController) SetLED(index int, r, g, b uint8) error {
	if sc.send == nil {
		return nil
	}
	note := sc.cfg.LEDBaseNote + index
	if index < 0 || note > 127 {
		return errors.Errorf("led %d has no note", index)
	}
	return sc.send(gomidi.NoteOn(uint8(sc.cfg.Channel), uint8(note), nearestVelocity(r, g, b)))
}

func (sc *SurfaceController) Close() error {
	if sc.stopFunc != nil {
		sc.stopFunc()
	}
	return nil
}
