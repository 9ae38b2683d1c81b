package mixer

// MainSlot is the slot number of the permanent main bus strip
const MainSlot = -1

// Strip is one visible mixer slot. It caches which channel it shows and
// whether its controls owe a redraw.
type Strip struct {
	slot        int
	ref         ChannelRef
	chain       Chain
	bound       bool
	dirty       bool
	highlighted bool
}

func newStrip(slot int) *Strip {
	return &Strip{slot: slot}
}

// Bind points the strip at a channel and forces one redraw
func (s *Strip) Bind(ref ChannelRef, chain Chain) {
	s.ref = ref
	s.chain = chain
	s.bound = true
	s.dirty = true
}

// Unbind hides the strip
func (s *Strip) Unbind() {
	if !s.bound {
		return
	}
	s.bound = false
	s.ref = ChannelRef{}
	s.chain = Chain{}
	s.highlighted = false
	s.dirty = true
}

// rebind binds only when the binding actually differs
func (s *Strip) rebind(ref ChannelRef, chain Chain) bool {
	if s.bound && s.ref == ref && s.chain == chain {
		return false
	}
	s.Bind(ref, chain)
	return true
}

// Bound returns the bound reference, ok is false for a hidden strip
func (s *Strip) Bound() (ChannelRef, bool) {
	return s.ref, s.bound
}

func (s *Strip) Chain() Chain      { return s.chain }
func (s *Strip) Slot() int         { return s.slot }
func (s *Strip) IsMain() bool      { return s.slot == MainSlot }
func (s *Strip) Hidden() bool      { return !s.bound }
func (s *Strip) Highlighted() bool { return s.highlighted }
func (s *Strip) Dirty() bool       { return s.dirty }

func (s *Strip) MarkDirty() {
	s.dirty = true
}

// ConsumeIfDirty reports whether a redraw is owed and clears the flag
func (s *Strip) ConsumeIfDirty() bool {
	d := s.dirty
	s.dirty = false
	return d
}

func (s *Strip) setHighlight(on bool) {
	if s.highlighted != on {
		s.highlighted = on
		s.dirty = true
	}
}
