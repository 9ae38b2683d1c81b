package mixer

import "go-mixsurface/surface"

// Press is the duration class of a switch press
type Press int

const (
	PressShort Press = iota
	PressBold
	PressLong
)

func (p Press) String() string {
	switch p {
	case PressShort:
		return "S"
	case PressBold:
		return "B"
	case PressLong:
		return "L"
	}
	return "?"
}

// Switch handles the push switch of an encoder. It reports whether the
// press was consumed by the mixer.
func (c *Controller) Switch(sw int, press Press) bool {
	switch sw {
	case surface.EncoderA:
		if press == PressShort {
			c.ToggleMute(Selected)
			return true
		}

	case surface.EncoderB:
		if press == PressShort {
			if c.mode == ModeEdit {
				c.ExitEdit()
			} else {
				c.ResetBalance(Selected)
			}
			return true
		}

	case surface.EncoderC:
		switch press {
		case PressShort:
			c.ToggleSolo(Selected)
			return true
		case PressBold:
			c.emit(Event{Kind: EventSnapshots, Index: -1})
			return true
		}

	case surface.EncoderD:
		idx := c.SelectedIndex()
		switch press {
		case PressShort:
			if c.hasSel && !c.sel.IsMain() {
				c.emit(Event{Kind: EventOpenChain, Strip: c.SelectedStrip(), Index: idx})
			}
			return true
		case PressBold:
			if c.hasSel && !c.sel.IsMain() {
				c.emit(Event{Kind: EventChainOptions, Strip: c.SelectedStrip(), Index: idx})
			}
			return true
		}
	}
	return false
}
