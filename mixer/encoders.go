package mixer

import (
	"math"

	"go-mixsurface/debug"
	"go-mixsurface/surface"
)

// encoder values per selection step on the select encoder
const selectStep = 4

func levelValue(level float64) int {
	return int(math.Round(level * 100))
}

func balanceValue(balance float64) int {
	return 50 + int(math.Round(balance*50))
}

// SetupEncoders configures the four encoder ranges and loads their values
func (c *Controller) SetupEncoders() {
	if c.enc == nil {
		return
	}
	sel := c.selectedChain()
	mainLevel := c.engine.level(MainChannel)

	c.setup(surface.EncoderA, 0, 100, levelValue(c.engine.level(sel.Channel)))
	c.setup(surface.EncoderB, 0, 100, balanceValue(c.engine.balance(sel.Channel)))
	c.setup(surface.EncoderC, 0, 100, levelValue(mainLevel))
	c.setup(surface.EncoderD, 0, selectStep*len(c.list), selectStep*max(c.SelectedIndex(), 0))
}

func (c *Controller) setup(enc, lo, hi, value int) {
	if err := c.enc.SetupRangeScale(enc, lo, hi, value, surface.FlagNone); err != nil {
		debug.Error("encoder", err)
	}
}

// PushEncoders writes the selected channel values to the encoders without
// raising their change flags
func (c *Controller) PushEncoders() {
	if c.enc == nil || !c.hasSel {
		return
	}
	sel := c.selectedChain()
	c.write(surface.EncoderA, levelValue(c.engine.level(sel.Channel)))
	c.write(surface.EncoderB, balanceValue(c.engine.balance(sel.Channel)))
	c.write(surface.EncoderC, levelValue(c.engine.level(MainChannel)))
	c.write(surface.EncoderD, selectStep*c.SelectedIndex())
}

func (c *Controller) write(enc, value int) {
	if err := c.enc.SetValue(enc, value, surface.FlagNone); err != nil {
		debug.Error("encoder", err)
	}
}

func (c *Controller) selectedChain() Chain {
	if !c.hasSel {
		return mainChain
	}
	info, ok := c.chainFor(c.sel)
	if !ok {
		return mainChain
	}
	return info
}

// changed reads enc if its change flag is up
func (c *Controller) changed(enc int) (int, bool) {
	ok, err := c.enc.ValueChanged(enc)
	if err != nil {
		debug.Error("encoder", err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	v, err := c.enc.Value(enc)
	if err != nil {
		debug.Error("encoder", err)
		return 0, false
	}
	return v, true
}

// PollEncoders applies encoder movements since the last poll. A and B need
// a selection, C and D work without one.
func (c *Controller) PollEncoders() {
	if c.enc == nil || !c.shown {
		return
	}
	sel := c.sel
	onMain := c.hasSel && sel.IsMain()

	if v, ok := c.changed(surface.EncoderA); ok && c.hasSel {
		if onMain {
			c.write(surface.EncoderC, v)
		}
		c.applyLevel(sel, float64(v)/100)
	}

	if v, ok := c.changed(surface.EncoderB); ok && c.hasSel {
		if info, ok := c.chainFor(sel); ok && info.Audio {
			c.engine.setBalance(info.Channel, clampFloat(float64(v-50)/50, -1, 1))
			c.markDirty(sel)
		}
	}

	if v, ok := c.changed(surface.EncoderC); ok {
		if onMain {
			c.write(surface.EncoderA, v)
		}
		c.applyLevel(MainBus, float64(v)/100)
	}

	if v, ok := c.changed(surface.EncoderD); ok {
		if idx := v / selectStep; c.mode == ModeNormal && idx != c.SelectedIndex() {
			c.Select(idx)
		}
		// the register must keep showing the selection when the turn was ignored
		if c.mode != ModeNormal || !c.hasSel {
			c.write(surface.EncoderD, selectStep*max(c.SelectedIndex(), 0))
		}
	}
}

// applyLevel sets a level without echoing it back to the encoders
func (c *Controller) applyLevel(ref ChannelRef, level float64) {
	info, ok := c.chainFor(ref)
	if !ok {
		return
	}
	c.engine.setLevel(info.Channel, clampFloat(level, 0, 1))
	c.markDirty(ref)
}

// Nudge steps an encoder as if it had been turned by delta detents
func (c *Controller) Nudge(enc, delta int) {
	if c.enc == nil {
		return
	}
	v, err := c.enc.Value(enc)
	if err != nil {
		debug.Error("encoder", err)
		return
	}
	if err := c.enc.SetValue(enc, v+delta, surface.FlagNotify); err != nil {
		debug.Error("encoder", err)
	}
}
