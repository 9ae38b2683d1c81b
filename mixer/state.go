package mixer

import "github.com/pkg/errors"

// GetState reads every engine channel, chains first and the main bus last
func (c *Controller) GetState() []ChannelState {
	out := make([]ChannelState, MaxChannels+1)
	for ch := range out {
		out[ch] = c.engine.state(ch)
	}
	return out
}

// SetState writes a full mixer state and forces a redraw of every strip
func (c *Controller) SetState(state []ChannelState) error {
	if len(state) != MaxChannels+1 {
		return errors.Errorf("mixer state needs %d channels, got %d", MaxChannels+1, len(state))
	}
	c.applyState(state)
	return nil
}

func (c *Controller) applyState(state []ChannelState) {
	for ch, s := range state {
		s.Level = clampFloat(s.Level, 0, 1)
		s.Balance = clampFloat(s.Balance, -1, 1)
		c.engine.setState(ch, s)
	}
	c.redrawAll = true
	c.PushEncoders()
}

// ResetState puts every channel back to the default level, centred and unmuted
func (c *Controller) ResetState() {
	state := make([]ChannelState, MaxChannels+1)
	for ch := range state {
		state[ch] = DefaultChannelState
	}
	c.applyState(state)
}
