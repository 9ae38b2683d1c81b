package mixer

import (
	"fmt"
	"math"
	"testing"

	"github.com/pkg/errors"

	"go-mixsurface/engine"
	"go-mixsurface/surface"
)

type fakeSource struct {
	chains  []Chain
	current int
}

func (f *fakeSource) Chains() []Chain    { return f.chains }
func (f *fakeSource) SetCurrent(pos int) { f.current = pos }

func newSource(n int) *fakeSource {
	f := &fakeSource{current: -1}
	for i := 0; i < n; i++ {
		f.chains = append(f.chains, Chain{Channel: i, Name: fmt.Sprintf("chain %d", i+1), Audio: true})
	}
	return f
}

type fixture struct {
	c   *Controller
	eng *engine.Memory
	src *fakeSource
	enc *surface.Bank
}

func setup(t *testing.T, chains, visible int) *fixture {
	t.Helper()
	f := &fixture{
		eng: engine.NewMemory(),
		src: newSource(chains),
		enc: surface.NewBank(0),
	}
	f.c = NewController(f.eng, f.src, f.enc, visible)
	f.c.Show()
	f.c.Events()
	f.c.Refresh(true)
	return f
}

func boundPositions(c *Controller) []int {
	out := make([]int, len(c.Strips()))
	for i, s := range c.Strips() {
		ref, ok := s.Bound()
		if !ok {
			out[i] = -1
			continue
		}
		out[i] = ref.Position()
	}
	return out
}

func TestSelectKeepsWindow(t *testing.T) {
	f := setup(t, 16, 8)
	order := []int{0, 5, 15, 16, 2, 9, 16, 0, 12, 7}
	for _, idx := range order {
		f.c.Select(idx)
		sel, off := f.c.SelectedIndex(), f.c.Offset()
		if sel != idx {
			t.Fatalf("Select(%d) left selection at %d", idx, sel)
		}
		if sel != f.c.NumChains() && (sel < off || sel >= off+f.c.Visible()) {
			t.Errorf("Select(%d): offset %d does not show selection", idx, off)
		}
	}
}

func TestSelectClamps(t *testing.T) {
	f := setup(t, 4, 8)
	f.c.Select(40)
	if got := f.c.SelectedIndex(); got != 4 {
		t.Errorf("Select(40) = %d, want main bus 4", got)
	}
	f.c.Select(-3)
	if got := f.c.SelectedIndex(); got != 0 {
		t.Errorf("Select(-3) = %d, want 0", got)
	}
}

func TestSelectSameIsNoop(t *testing.T) {
	f := setup(t, 6, 4)
	f.c.Select(2)
	f.c.Events()
	f.c.Refresh(false)

	f.c.Select(2)
	if ev := f.c.Events(); len(ev) != 0 {
		t.Errorf("re-select emitted %v", ev)
	}
	if dirty := f.c.Refresh(false); len(dirty) != 0 {
		t.Errorf("re-select dirtied %d strips", len(dirty))
	}
}

func TestSelectScrollsRight(t *testing.T) {
	f := setup(t, 16, 8)
	f.c.Select(10)

	if got := f.c.Offset(); got != 3 {
		t.Fatalf("offset = %d, want 3", got)
	}
	want := []int{3, 4, 5, 6, 7, 8, 9, 10}
	got := boundPositions(f.c)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("bindings = %v, want %v", got, want)
		}
	}
	for i, s := range f.c.Strips() {
		if s.Highlighted() != (i == 7) {
			t.Errorf("slot %d highlighted = %v", i, s.Highlighted())
		}
	}
	if f.src.current != 10 {
		t.Errorf("current chain = %d, want 10", f.src.current)
	}
	if v, _ := f.enc.Value(surface.EncoderD); v != 40 {
		t.Errorf("select encoder = %d, want 40", v)
	}
}

func TestSelectMainKeepsOffset(t *testing.T) {
	f := setup(t, 16, 8)
	f.c.Select(2)
	f.c.Select(16)
	if f.c.Offset() != 0 {
		t.Errorf("offset = %d, selecting main should not scroll", f.c.Offset())
	}
	if !f.c.MainStrip().Highlighted() {
		t.Error("main strip not highlighted")
	}
	if f.src.current != 2 {
		t.Errorf("main bus must not become the current chain, got %d", f.src.current)
	}
}

func TestReconcile(t *testing.T) {
	f := setup(t, 6, 4)
	f.c.Select(1)
	f.c.Refresh(false)

	f.c.Reconcile()
	if dirty := f.c.Refresh(false); len(dirty) != 0 {
		t.Errorf("unchanged reconcile dirtied %d strips", len(dirty))
	}

	f.src.chains = f.src.chains[:2]
	f.c.Reconcile()
	if got := boundPositions(f.c); got[2] != -1 || got[3] != -1 || got[1] != 1 {
		t.Errorf("bindings after shrink = %v", got)
	}
	if f.c.SelectedIndex() != 1 {
		t.Errorf("reconcile moved the selection to %d", f.c.SelectedIndex())
	}
	if _, max := f.enc.Range(surface.EncoderD); max != 8 {
		t.Errorf("select encoder max = %d, want 8", max)
	}
	if f.c.Title() != "Audio Mixer (2 chains)" {
		t.Errorf("title = %q", f.c.Title())
	}

	dirty := f.c.Refresh(false)
	if len(dirty) != 2 {
		t.Errorf("shrink dirtied %d strips, want 2", len(dirty))
	}
}

func TestReconcileShrinkPastSelection(t *testing.T) {
	tcs := []struct {
		name            string
		chains, visible int
		sel, shrink     int
		wantSel         int
		wantBound       []int
	}{
		{"last of four", 4, 4, 3, 3, 2, []int{0, 1, 2, -1}},
		{"scrolled window", 16, 8, 15, 4, 3, []int{0, 1, 2, 3, -1, -1, -1, -1}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t, tc.chains, tc.visible)
			f.c.Select(tc.sel)
			f.c.Events()

			f.src.chains = f.src.chains[:tc.shrink]
			f.c.Reconcile()

			sel, off := f.c.SelectedIndex(), f.c.Offset()
			if sel != tc.wantSel {
				t.Fatalf("selected = %d, want %d", sel, tc.wantSel)
			}
			if off != 0 || sel < off || sel >= off+f.c.Visible() {
				t.Errorf("offset %d does not show selection %d", off, sel)
			}
			if got := boundPositions(f.c); fmt.Sprint(got) != fmt.Sprint(tc.wantBound) {
				t.Errorf("bindings = %v, want %v", got, tc.wantBound)
			}
			if s := f.c.SelectedStrip(); s == nil || !s.Highlighted() {
				t.Error("moved selection not highlighted")
			}
			if f.src.current != tc.wantSel {
				t.Errorf("current chain = %d, want %d", f.src.current, tc.wantSel)
			}
			ev := f.c.Events()
			if len(ev) == 0 || ev[len(ev)-1].Kind != EventHighlight {
				t.Errorf("events = %v, want a highlight", ev)
			}

			// the main bus is reachable again and the selection commands land on it
			f.c.Select(tc.shrink)
			if !f.c.MainStrip().Highlighted() {
				t.Fatal("main strip not highlighted")
			}
			f.c.SetVolume(Selected, 0.1)
			if l, _ := f.eng.Level(engine.MainChannel); l != 0.1 {
				t.Errorf("main level = %v, want 0.1", l)
			}
		})
	}
}

func TestEmptyStartSelectsOnReconcile(t *testing.T) {
	f := setup(t, 0, 4)
	if f.c.SelectedIndex() != -1 {
		t.Fatalf("selected = %d with no chains", f.c.SelectedIndex())
	}

	f.src.chains = newSource(4).chains
	f.c.Reconcile()
	if f.c.SelectedIndex() != 0 {
		t.Fatalf("selected = %d, want 0", f.c.SelectedIndex())
	}

	f.enc.Turn(surface.EncoderD, 8)
	f.enc.Turn(surface.EncoderC, -30)
	f.c.PollEncoders()
	if f.c.SelectedIndex() != 2 {
		t.Errorf("selected = %d, want 2", f.c.SelectedIndex())
	}
	if l, _ := f.eng.Level(engine.MainChannel); l != 0.5 {
		t.Errorf("main level = %v, want 0.5", l)
	}
}

func TestMainEncoderWithoutSelection(t *testing.T) {
	f := setup(t, 0, 4)
	f.enc.Turn(surface.EncoderC, -20)
	f.c.PollEncoders()
	if l, _ := f.eng.Level(engine.MainChannel); l != 0.6 {
		t.Errorf("main level = %v, want 0.6", l)
	}
}

func TestVolumeClamps(t *testing.T) {
	f := setup(t, 4, 4)
	tcs := []struct {
		in, want float64
	}{
		{0.3, 0.3},
		{1.7, 1},
		{-2, 0},
	}
	for _, tc := range tcs {
		f.c.SetVolume(1, tc.in)
		if got, _ := f.eng.Level(1); got != tc.want {
			t.Errorf("SetVolume(%v) -> %v, want %v", tc.in, got, tc.want)
		}
	}
	f.c.ResetVolume(1)
	if got, _ := f.eng.Level(1); got != DefaultLevel {
		t.Errorf("reset = %v", got)
	}
}

func TestIndexResolution(t *testing.T) {
	f := setup(t, 4, 4)
	f.c.Select(2)

	f.c.SetVolume(Selected, 0.1)
	f.c.SetVolume(4, 0.2)
	f.c.SetVolume(MainChannel, 0.3)
	f.c.SetVolume(5, 0.9)
	f.c.SetVolume(-7, 0.9)

	if got, _ := f.eng.Level(2); got != 0.1 {
		t.Errorf("selected level = %v", got)
	}
	if got, _ := f.eng.Level(engine.MainChannel); got != 0.3 {
		t.Errorf("main level = %v, want 0.3", got)
	}
	if got, _ := f.eng.Level(5); got != DefaultLevel {
		t.Errorf("out of range index changed channel 5 to %v", got)
	}
}

func TestBalanceIgnoredOnMidiChain(t *testing.T) {
	f := setup(t, 3, 4)
	f.src.chains[1].Audio = false
	f.c.Reconcile()

	f.c.SetBalance(1, 0.5)
	f.c.SetMono(1, true)
	f.c.ToggleMono(1)
	if b, _ := f.eng.Balance(1); b != 0 {
		t.Errorf("balance = %v, want 0", b)
	}
	if m, _ := f.eng.Mono(1); m {
		t.Error("mono set on MIDI chain")
	}

	f.c.SetBalance(0, 3)
	if b, _ := f.eng.Balance(0); b != 1 {
		t.Errorf("audio balance = %v, want 1", b)
	}
}

func TestSoloDirtiesMain(t *testing.T) {
	f := setup(t, 6, 4)
	f.c.Refresh(false)

	f.c.SetSolo(2, true)
	dirty := f.c.Refresh(false)
	if len(dirty) != 2 || dirty[0] != f.c.Strips()[2] || dirty[1] != f.c.MainStrip() {
		t.Errorf("solo chain dirtied %d strips", len(dirty))
	}
	if !f.c.View(f.c.MainStrip()).AnySolo {
		t.Error("main strip does not show solo")
	}

	f.c.ToggleSolo(6)
	if dirty := f.c.Refresh(false); len(dirty) != 5 {
		t.Errorf("solo main dirtied %d strips, want 5", len(dirty))
	}
}

func TestStateRoundTrip(t *testing.T) {
	f := setup(t, 4, 4)
	f.c.SetVolume(0, 0.25)
	f.c.SetBalance(1, -0.5)
	f.c.SetMute(2, true)
	f.c.SetSolo(3, true)
	f.c.SetMono(MainChannel, true)
	saved := f.c.GetState()

	f.c.ResetState()
	if st := f.c.GetState(); st[0].Level != DefaultLevel || st[2].Mute || st[3].Solo {
		t.Fatalf("reset left %+v", st[:4])
	}

	if err := f.c.SetState(saved); err != nil {
		t.Fatal(err)
	}
	got := f.c.GetState()
	for i := range saved {
		if got[i] != saved[i] {
			t.Errorf("channel %d = %+v, want %+v", i, got[i], saved[i])
		}
	}
	if dirty := f.c.Refresh(false); len(dirty) != 5 {
		t.Errorf("SetState redrew %d strips, want all 5", len(dirty))
	}
}

func TestSetStateLength(t *testing.T) {
	f := setup(t, 2, 4)
	if err := f.c.SetState(make([]ChannelState, 3)); err == nil {
		t.Error("short state accepted")
	}
}

func TestResetState(t *testing.T) {
	f := setup(t, 2, 4)
	f.c.SetVolume(0, 0.2)
	f.c.SetMute(1, true)
	f.c.ResetState()
	if l, _ := f.eng.Level(0); l != DefaultLevel {
		t.Errorf("level = %v, want %v", l, DefaultLevel)
	}
	if m, _ := f.eng.Mute(1); m {
		t.Error("mute survived reset")
	}
	if dirty := f.c.Refresh(false); len(dirty) == 0 {
		t.Error("reset did not redraw")
	}
}

func TestSelectEncoder(t *testing.T) {
	f := setup(t, 16, 8)
	tcs := []struct {
		turn int
		want int
	}{
		{13, 3},
		{1, 3},
		{3, 4},
		{-16, 0},
	}
	for _, tc := range tcs {
		f.enc.Turn(surface.EncoderD, tc.turn)
		f.c.PollEncoders()
		if got := f.c.SelectedIndex(); got != tc.want {
			t.Errorf("turn %d: selected %d, want %d", tc.turn, got, tc.want)
		}
	}
}

func TestSelectEncoderIgnoredInEdit(t *testing.T) {
	f := setup(t, 4, 4)
	f.c.Select(1)
	f.c.EnterEdit()

	f.enc.Turn(surface.EncoderD, 8)
	f.c.PollEncoders()
	if got := f.c.SelectedIndex(); got != 1 {
		t.Errorf("selected = %d, want 1", got)
	}
	if v, _ := f.enc.Value(surface.EncoderD); v != selectStep {
		t.Errorf("encoder D = %d, want %d", v, selectStep)
	}
	if changed, _ := f.enc.ValueChanged(surface.EncoderD); changed {
		t.Error("restoring encoder D raised the change flag")
	}
}

func TestLevelEncoders(t *testing.T) {
	f := setup(t, 4, 4)
	f.c.Select(1)
	f.c.Refresh(false)

	f.enc.Turn(surface.EncoderA, -30)
	f.enc.Turn(surface.EncoderB, 10)
	f.c.PollEncoders()
	if l, _ := f.eng.Level(1); l != 0.5 {
		t.Errorf("level = %v, want 0.5", l)
	}
	if b, _ := f.eng.Balance(1); b != 0.2 {
		t.Errorf("balance = %v, want 0.2", b)
	}
	if dirty := f.c.Refresh(false); len(dirty) != 1 || dirty[0] != f.c.Strips()[1] {
		t.Errorf("encoders dirtied %d strips", len(dirty))
	}
}

func TestMainEncodersMirror(t *testing.T) {
	f := setup(t, 4, 4)
	f.c.Select(4)

	f.enc.Turn(surface.EncoderA, -10)
	f.c.PollEncoders()
	if l, _ := f.eng.Level(engine.MainChannel); l != 0.7 {
		t.Errorf("main level = %v, want 0.7", l)
	}
	if changed, _ := f.enc.ValueChanged(surface.EncoderC); changed {
		t.Error("mirror write raised the change flag")
	}
	if v, _ := f.enc.Value(surface.EncoderC); v != 70 {
		t.Errorf("encoder C = %d, want 70", v)
	}
}

func TestEditRestoresBindings(t *testing.T) {
	f := setup(t, 16, 8)
	f.c.Select(10)
	before := boundPositions(f.c)

	f.c.EnterEdit()
	if f.c.Mode() != ModeEdit || f.c.Title() != "Edit chain 11" {
		t.Fatalf("mode %v title %q", f.c.Mode(), f.c.Title())
	}
	got := boundPositions(f.c)
	for i, p := range got[:7] {
		if p != -1 {
			t.Errorf("slot %d still bound to %d", i, p)
		}
	}
	if got[7] != 10 {
		t.Errorf("edit slot bound to %d, want 10", got[7])
	}

	f.c.Select(2)
	f.c.ScrollWheel(true)
	if f.c.SelectedIndex() != 10 {
		t.Error("selection changed in edit mode")
	}

	f.c.ExitEdit()
	after := boundPositions(f.c)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("bindings %v, want %v", after, before)
		}
	}
}

func TestEditMain(t *testing.T) {
	f := setup(t, 3, 4)
	f.c.EnterEditAt(3)
	if f.c.Title() != "Edit main" {
		t.Errorf("title = %q", f.c.Title())
	}
	ev := f.c.Events()
	var panel bool
	for _, e := range ev {
		if e.Kind == EventEditPanel && e.Index == 3 {
			panel = true
		}
	}
	if !panel {
		t.Errorf("no edit panel event in %v", ev)
	}
}

func TestEditChainVanishes(t *testing.T) {
	f := setup(t, 4, 4)
	f.c.EnterEditAt(3)
	f.src.chains = f.src.chains[:3]
	f.c.Reconcile()
	if f.c.Mode() != ModeNormal {
		t.Error("still editing a removed chain")
	}
}

func TestScrollWheel(t *testing.T) {
	f := setup(t, 10, 4)
	f.c.Select(0)

	f.c.ScrollWheel(true)
	if f.c.Offset() != 1 || f.c.SelectedIndex() != 1 {
		t.Errorf("offset %d selected %d", f.c.Offset(), f.c.SelectedIndex())
	}
	for i := 0; i < 20; i++ {
		f.c.ScrollWheel(true)
	}
	if f.c.Offset() != 6 {
		t.Errorf("offset = %d, want 6", f.c.Offset())
	}
	f.c.Select(9)
	for i := 0; i < 3; i++ {
		f.c.ScrollWheel(false)
	}
	if f.c.Offset() != 3 || f.c.SelectedIndex() != 6 {
		t.Errorf("offset %d selected %d", f.c.Offset(), f.c.SelectedIndex())
	}
}

func TestFaderWheel(t *testing.T) {
	f := setup(t, 4, 4)
	f.c.FaderWheel(2, true)
	f.c.BalanceWheel(2, false)
	if l, _ := f.eng.Level(2); l < 0.819 || l > 0.821 {
		t.Errorf("level = %v", l)
	}
	if b, _ := f.eng.Balance(2); b != -WheelStep {
		t.Errorf("balance = %v", b)
	}
	f.c.FaderWheel(MainSlot, false)
	if l, _ := f.eng.Level(engine.MainChannel); l < 0.779 || l > 0.781 {
		t.Errorf("main level = %v", l)
	}
}

func TestSwitches(t *testing.T) {
	f := setup(t, 4, 4)
	f.c.Select(1)
	f.c.SetBalance(1, 0.4)

	f.c.Switch(surface.EncoderA, PressShort)
	f.c.Switch(surface.EncoderB, PressShort)
	f.c.Switch(surface.EncoderC, PressShort)
	if m, _ := f.eng.Mute(1); !m {
		t.Error("A short did not mute")
	}
	if b, _ := f.eng.Balance(1); b != 0 {
		t.Errorf("B short left balance %v", b)
	}
	if s, _ := f.eng.Solo(1); !s {
		t.Error("C short did not solo")
	}

	f.c.Events()
	f.c.Switch(surface.EncoderC, PressBold)
	f.c.Switch(surface.EncoderD, PressShort)
	f.c.Switch(surface.EncoderD, PressBold)
	ev := f.c.Events()
	want := []EventKind{EventSnapshots, EventOpenChain, EventChainOptions}
	if len(ev) != len(want) {
		t.Fatalf("events = %v", ev)
	}
	for i, k := range want {
		if ev[i].Kind != k {
			t.Errorf("event %d = %v, want %v", i, ev[i].Kind, k)
		}
	}
	if f.c.Switch(surface.EncoderA, PressLong) {
		t.Error("long press on A should not be consumed")
	}

	f.c.EnterEdit()
	f.c.Switch(surface.EncoderB, PressShort)
	if f.c.Mode() != ModeNormal {
		t.Error("B short did not leave edit mode")
	}
}

func TestNudge(t *testing.T) {
	f := setup(t, 4, 4)
	f.c.Select(0)
	f.c.Nudge(surface.EncoderA, 5)
	f.c.PollEncoders()
	if l, _ := f.eng.Level(0); l != 0.85 {
		t.Errorf("level = %v, want 0.85", l)
	}
}

func TestMeters(t *testing.T) {
	f := setup(t, 2, 4)
	f.eng.SetPeak(1, 0, -5, -3)
	m := f.c.Meters(1)
	if math.Abs(m.Peak[0]-0.9) > 1e-9 || math.Abs(m.Hold[0]-0.94) > 1e-9 {
		t.Errorf("meter = %+v", m)
	}
	if MeterZone(m.Hold[0]) != ZoneOver {
		t.Errorf("hold zone = %v", MeterZone(m.Hold[0]))
	}
	if (f.c.Meters(3) != Meter{}) {
		t.Error("hidden strip metered")
	}
}

type brokenEngine struct {
	*engine.Memory
	fail bool
}

var errOffline = errors.New("engine offline")

func (b *brokenEngine) Level(ch int) (float64, error) {
	if b.fail {
		return 0, errOffline
	}
	return b.Memory.Level(ch)
}

func TestEngineFailureKeepsLastValue(t *testing.T) {
	eng := &brokenEngine{Memory: engine.NewMemory()}
	c := NewController(eng, newSource(2), surface.NewBank(0), 4)
	c.SetVolume(0, 0.4)
	if v := c.View(c.Strips()[0]); v.Level != 0.4 {
		t.Fatalf("level = %v", v.Level)
	}
	eng.fail = true
	if v := c.View(c.Strips()[0]); v.Level != 0.4 {
		t.Errorf("level after failure = %v, want last value 0.4", v.Level)
	}
}

func TestAutoVisible(t *testing.T) {
	tcs := []struct{ width, want int }{
		{320, 4}, {480, 8}, {800, 10}, {1024, 12}, {1280, 14}, {1920, 16},
	}
	for _, tc := range tcs {
		if got := AutoVisible(tc.width); got != tc.want {
			t.Errorf("AutoVisible(%d) = %d, want %d", tc.width, got, tc.want)
		}
	}
}
