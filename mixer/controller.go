package mixer

import (
	"fmt"

	"go-mixsurface/debug"
	"go-mixsurface/surface"
)

// Mode is the view mode of the mixer
type Mode int

const (
	ModeNormal Mode = iota
	ModeEdit        // pinned to one channel with the extended controls
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "mixer"
}

// Volume and balance steps
const (
	DefaultLevel = 0.8
	WheelStep    = 0.02
)

// Controller owns the visible strips, scroll offset, selection and mode and
// keeps them consistent with the engine and the chain list.
type Controller struct {
	engine *guard
	chains ChainSource
	enc    surface.Adapter

	strips []*Strip
	main   *Strip
	list   []Chain

	offset    int
	sel       ChannelRef
	hasSel    bool
	mode      Mode
	editIndex int
	title     string
	shown     bool

	redrawAll bool
	events    []Event
}

// NewController builds the strip bank. visible is clamped to 1..MaxChannels.
func NewController(engine Engine, chains ChainSource, enc surface.Adapter, visible int) *Controller {
	if visible < 1 {
		visible = 1
	}
	if visible > MaxChannels {
		visible = MaxChannels
	}
	c := &Controller{
		engine:    newGuard(engine),
		chains:    chains,
		enc:       enc,
		strips:    make([]*Strip, visible),
		main:      newStrip(MainSlot),
		editIndex: -1,
	}
	for i := range c.strips {
		c.strips[i] = newStrip(i)
	}
	c.main.Bind(MainBus, mainChain)
	c.Reconcile()
	c.setTitle()
	return c
}

// Accessors

func (c *Controller) Mode() Mode        { return c.mode }
func (c *Controller) Offset() int       { return c.offset }
func (c *Controller) Visible() int      { return len(c.strips) }
func (c *Controller) NumChains() int    { return len(c.list) }
func (c *Controller) Title() string     { return c.title }
func (c *Controller) EditIndex() int    { return c.editIndex }
func (c *Controller) Strips() []*Strip  { return c.strips }
func (c *Controller) MainStrip() *Strip { return c.main }
func (c *Controller) Shown() bool       { return c.shown }
func (c *Controller) Chains() []Chain   { return c.list }

// SelectedIndex returns the selection in 0..N (N = main bus) or -1 if unset
func (c *Controller) SelectedIndex() int {
	if !c.hasSel {
		return -1
	}
	return c.indexOf(c.sel)
}

// SelectedStrip returns the strip showing the selection, or nil
func (c *Controller) SelectedStrip() *Strip {
	if !c.hasSel {
		return nil
	}
	if c.sel.IsMain() && c.mode == ModeNormal {
		return c.main
	}
	for _, s := range c.strips {
		if ref, ok := s.Bound(); ok && ref == c.sel {
			return s
		}
	}
	if c.sel.IsMain() {
		return c.main
	}
	return nil
}

func (c *Controller) indexOf(ref ChannelRef) int {
	if ref.IsMain() {
		return len(c.list)
	}
	return ref.Position()
}

// Events drains the events emitted since the last call
func (c *Controller) Events() []Event {
	ev := c.events
	c.events = nil
	return ev
}

func (c *Controller) emit(e Event) {
	c.events = append(c.events, e)
}

// Show is called when the mixer screen becomes visible
func (c *Controller) Show() {
	if c.shown {
		return
	}
	c.shown = true
	c.ExitEdit()
	c.Reconcile()
	c.SetupEncoders()
	c.engine.enableDPM(true)
	c.redrawAll = true
}

// Hide stops the meters while another screen is shown
func (c *Controller) Hide() {
	if !c.shown {
		return
	}
	c.shown = false
	c.engine.enableDPM(false)
}

// Reconcile re-reads the chain list and rebinds the visible slots. A valid
// selection is kept; one left past the end moves to the last chain.
func (c *Controller) Reconcile() {
	list := c.chains.Chains()
	if len(list) > MaxChannels {
		list = list[:MaxChannels]
	}
	countChanged := len(list) != len(c.list)
	c.list = append([]Chain(nil), list...)
	moved := c.clampSelection()

	if c.mode == ModeEdit {
		c.rebindEdit()
	} else {
		c.bindWindow()
	}

	if countChanged {
		debug.Log("mixer", "chain count now %d", len(c.list))
		if c.mode == ModeNormal {
			c.setTitle()
		}
		if c.shown {
			c.SetupEncoders()
		}
	}

	switch {
	case c.shown && !c.hasSel && len(c.list) > 0:
		c.Select(0)
	case moved:
		c.emit(Event{Kind: EventHighlight, Strip: c.SelectedStrip(), Index: c.SelectedIndex()})
		c.PushEncoders()
		if !c.sel.IsMain() {
			c.chains.SetCurrent(c.sel.Position())
		}
	}
}

// clampSelection pulls the scroll window and a selected chain that no longer
// exists back inside the chain list
func (c *Controller) clampSelection() bool {
	n := len(c.list)
	c.offset = clampInt(c.offset, 0, max(0, n-len(c.strips)))
	if !c.hasSel || c.sel.IsMain() || c.sel.Position() < n {
		return false
	}
	if n == 0 {
		c.sel = MainBus
	} else {
		c.sel = ChainRef(n - 1)
	}
	debug.Log("mixer", "selection past the end, now %s", c.sel)
	return true
}

// bindWindow binds slot i to chain offset+i, or hides it past the end
func (c *Controller) bindWindow() {
	for i, s := range c.strips {
		pos := c.offset + i
		if pos < len(c.list) {
			s.rebind(ChainRef(pos), c.list[pos])
		} else {
			s.Unbind()
		}
	}
	c.applyHighlight()
}

func (c *Controller) rebindEdit() {
	edit := c.strips[len(c.strips)-1]
	ref, ok := edit.Bound()
	if !ok {
		return
	}
	info, ok := c.chainFor(ref)
	if !ok {
		debug.Log("mixer", "edited %s vanished, leaving edit mode", ref)
		c.ExitEdit()
		return
	}
	edit.rebind(ref, info)
}

func (c *Controller) applyHighlight() {
	for _, s := range c.strips {
		ref, ok := s.Bound()
		s.setHighlight(ok && c.hasSel && ref == c.sel)
	}
	c.main.setHighlight(c.hasSel && c.sel.IsMain())
}

func (c *Controller) chainFor(ref ChannelRef) (Chain, bool) {
	if ref.IsMain() {
		return mainChain, true
	}
	pos := ref.Position()
	if pos < 0 || pos >= len(c.list) {
		return Chain{}, false
	}
	return c.list[pos], true
}

// Select moves the selection to index (0..N, N = main bus)
func (c *Controller) Select(index int) {
	n := len(c.list)
	if c.mode == ModeEdit || n == 0 {
		return
	}
	index = clampInt(index, 0, n)
	if index == c.SelectedIndex() {
		return
	}

	prevOffset := c.offset
	if index < c.offset {
		c.offset = index
	} else if index >= c.offset+len(c.strips) && index != n {
		c.offset = index - len(c.strips) + 1
	}

	if index == n {
		c.sel = MainBus
	} else {
		c.sel = ChainRef(index)
	}
	c.hasSel = true

	if c.offset != prevOffset {
		c.bindWindow()
		c.emit(Event{Kind: EventRebind})
	} else {
		c.applyHighlight()
	}
	c.emit(Event{Kind: EventHighlight, Strip: c.SelectedStrip(), Index: index})

	c.PushEncoders()

	if index != n {
		c.chains.SetCurrent(index)
	}
}

// Next selects the channel to the right
func (c *Controller) Next() {
	c.Select(c.SelectedIndex() + 1)
}

// Prev selects the channel to the left
func (c *Controller) Prev() {
	if c.SelectedIndex() <= 0 {
		return
	}
	c.Select(c.SelectedIndex() - 1)
}

// EnterEdit pins the view to the selected channel and shows the edit panel
func (c *Controller) EnterEdit() {
	if c.mode == ModeEdit || !c.hasSel {
		return
	}
	info, ok := c.chainFor(c.sel)
	if !ok {
		return
	}
	c.mode = ModeEdit
	c.editIndex = c.SelectedIndex()

	last := len(c.strips) - 1
	for i, s := range c.strips {
		if i != last {
			s.Unbind()
		}
	}
	c.strips[last].rebind(c.sel, info)
	c.applyHighlight()

	if c.sel.IsMain() {
		c.title = "Edit main"
	} else {
		c.title = fmt.Sprintf("Edit chain %d", c.editIndex+1)
	}
	c.emit(Event{Kind: EventEditPanel, Strip: c.strips[last], Index: c.editIndex})
	c.emit(Event{Kind: EventTitle})
}

// EnterEditAt selects index and enters edit mode on it
func (c *Controller) EnterEditAt(index int) {
	c.Select(index)
	c.EnterEdit()
}

// ExitEdit returns to the scrolling strip view
func (c *Controller) ExitEdit() {
	if c.mode != ModeEdit {
		return
	}
	c.mode = ModeNormal
	c.editIndex = -1
	c.bindWindow()
	c.setTitle()
	c.emit(Event{Kind: EventEditPanel, Index: -1})
	c.emit(Event{Kind: EventTitle})
}

func (c *Controller) setTitle() {
	c.title = fmt.Sprintf("Audio Mixer (%d chains)", len(c.list))
}

// ScrollWheel scrolls the strip window by one chain. A selected chain that
// leaves the window is pulled back to its nearest edge.
func (c *Controller) ScrollWheel(up bool) {
	if c.mode == ModeEdit {
		return
	}
	if up {
		if c.offset+len(c.strips) >= len(c.list) {
			return
		}
		c.offset++
	} else {
		if c.offset < 1 {
			return
		}
		c.offset--
	}
	c.bindWindow()
	c.emit(Event{Kind: EventRebind})

	if c.hasSel && !c.sel.IsMain() {
		pos := c.sel.Position()
		last := min(c.offset+len(c.strips), len(c.list)) - 1
		switch {
		case pos < c.offset:
			c.Select(c.offset)
		case pos > last:
			c.Select(last)
		}
	}
}

// resolve turns a setter index into a reference and its chain. Index N and
// MainChannel both address the main bus; anything past N is rejected.
func (c *Controller) resolve(index int) (ChannelRef, Chain, bool) {
	n := len(c.list)
	var ref ChannelRef
	switch {
	case index == Selected:
		if !c.hasSel {
			return ChannelRef{}, Chain{}, false
		}
		ref = c.sel
	case index == n || index == MainChannel:
		ref = MainBus
	case index < 0 || index > n:
		return ChannelRef{}, Chain{}, false
	default:
		ref = ChainRef(index)
	}
	info, ok := c.chainFor(ref)
	return ref, info, ok
}

// markDirty flags every strip showing ref
func (c *Controller) markDirty(ref ChannelRef) {
	if ref.IsMain() {
		c.main.MarkDirty()
	}
	for _, s := range c.strips {
		if r, ok := s.Bound(); ok && r == ref {
			s.MarkDirty()
		}
	}
}

func (c *Controller) markAllDirty() {
	c.main.MarkDirty()
	for _, s := range c.strips {
		s.MarkDirty()
	}
}

func (c *Controller) touched(ref ChannelRef, pushEncoders bool) {
	c.markDirty(ref)
	if pushEncoders && c.hasSel && ref == c.sel {
		c.PushEncoders()
	}
}

// SetVolume sets a channel level, clamped to 0..1
func (c *Controller) SetVolume(index int, level float64) {
	ref, info, ok := c.resolve(index)
	if !ok {
		return
	}
	c.engine.setLevel(info.Channel, clampFloat(level, 0, 1))
	c.touched(ref, true)
}

// SetBalance sets a channel balance, clamped to -1..1. MIDI-only chains
// have no balance.
func (c *Controller) SetBalance(index int, balance float64) {
	ref, info, ok := c.resolve(index)
	if !ok || !info.Audio {
		return
	}
	c.engine.setBalance(info.Channel, clampFloat(balance, -1, 1))
	c.touched(ref, true)
}

func (c *Controller) ResetVolume(index int) {
	c.SetVolume(index, DefaultLevel)
}

func (c *Controller) ResetBalance(index int) {
	c.SetBalance(index, 0)
}

func (c *Controller) SetMute(index int, on bool) {
	ref, info, ok := c.resolve(index)
	if !ok {
		return
	}
	c.engine.setMute(info.Channel, on)
	c.touched(ref, false)
}

func (c *Controller) ToggleMute(index int) {
	ref, info, ok := c.resolve(index)
	if !ok {
		return
	}
	c.engine.toggleMute(info.Channel)
	c.touched(ref, false)
}

func (c *Controller) SetSolo(index int, on bool) {
	ref, info, ok := c.resolve(index)
	if !ok {
		return
	}
	c.engine.setSolo(info.Channel, on)
	c.soloTouched(ref)
}

func (c *Controller) ToggleSolo(index int) {
	ref, info, ok := c.resolve(index)
	if !ok {
		return
	}
	c.engine.toggleSolo(info.Channel)
	c.soloTouched(ref)
}

// soloTouched also flags the main strip, which shows whether anything is
// soloed. Solo on the main bus affects every strip.
func (c *Controller) soloTouched(ref ChannelRef) {
	if ref.IsMain() {
		c.markAllDirty()
		return
	}
	c.markDirty(ref)
	c.main.MarkDirty()
}

func (c *Controller) SetMono(index int, on bool) {
	ref, info, ok := c.resolve(index)
	if !ok || !info.Audio {
		return
	}
	c.engine.setMono(info.Channel, on)
	c.touched(ref, false)
}

func (c *Controller) ToggleMono(index int) {
	ref, info, ok := c.resolve(index)
	if !ok || !info.Audio {
		return
	}
	c.engine.toggleMono(info.Channel)
	c.touched(ref, false)
}

func (c *Controller) stripAt(slot int) *Strip {
	if slot == MainSlot {
		return c.main
	}
	if slot < 0 || slot >= len(c.strips) {
		return nil
	}
	return c.strips[slot]
}

// FaderWheel nudges the level of the strip in slot
func (c *Controller) FaderWheel(slot int, up bool) {
	s := c.stripAt(slot)
	if s == nil || s.Hidden() {
		return
	}
	step := -WheelStep
	if up {
		step = WheelStep
	}
	c.SetVolume(c.indexOf(s.ref), c.engine.level(s.chain.Channel)+step)
}

// BalanceWheel nudges the balance of the strip in slot
func (c *Controller) BalanceWheel(slot int, up bool) {
	s := c.stripAt(slot)
	if s == nil || s.Hidden() {
		return
	}
	step := -WheelStep
	if up {
		step = WheelStep
	}
	c.SetBalance(c.indexOf(s.ref), c.engine.balance(s.chain.Channel)+step)
}

// Refresh returns the strips that owe a redraw and clears their flags.
// force (or a pending full refresh) returns every strip.
func (c *Controller) Refresh(force bool) []*Strip {
	all := force || c.redrawAll
	c.redrawAll = false

	var out []*Strip
	for _, s := range c.strips {
		if s.ConsumeIfDirty() || all {
			out = append(out, s)
		}
	}
	if c.main.ConsumeIfDirty() || all {
		out = append(out, c.main)
	}
	return out
}

// RequestRefresh asks for a full redraw on the next Refresh
func (c *Controller) RequestRefresh() {
	c.redrawAll = true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
