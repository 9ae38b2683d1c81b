// Package chain keeps the ordered list of processing chains and which one is
// current.
package chain

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"go-mixsurface/debug"
	"go-mixsurface/mixer"
)

// ErrFull is returned when every engine channel is taken
var ErrFull = errors.New("no free chain channel")

// Manager holds the chains sorted by engine channel. Positions are renumbered
// on every add and remove.
type Manager struct {
	mu      sync.Mutex
	chains  []mixer.Chain
	current int
	version int
}

func NewManager() *Manager {
	return &Manager{current: -1}
}

// Chains returns a copy of the list in position order
func (m *Manager) Chains() []mixer.Chain {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mixer.Chain(nil), m.chains...)
}

// Len returns the chain count
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chains)
}

// Add creates a chain on the lowest free engine channel and returns its
// position
func (m *Manager) Add(name string, audio bool) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	used := make(map[int]bool, len(m.chains))
	for _, c := range m.chains {
		used[c.Channel] = true
	}
	ch := -1
	for i := 0; i < mixer.MaxChannels; i++ {
		if !used[i] {
			ch = i
			break
		}
	}
	if ch < 0 {
		return -1, ErrFull
	}

	m.chains = append(m.chains, mixer.Chain{Channel: ch, Name: name, Audio: audio})
	sort.Slice(m.chains, func(i, j int) bool { return m.chains[i].Channel < m.chains[j].Channel })
	m.version++

	pos := m.position(ch)
	if m.current >= pos {
		m.current++
	}
	if m.current < 0 {
		m.current = pos
	}
	debug.Log("chain", "added %q on channel %d at %d", name, ch, pos)
	return pos, nil
}

func (m *Manager) position(ch int) int {
	for i, c := range m.chains {
		if c.Channel == ch {
			return i
		}
	}
	return -1
}

// Remove deletes the chain at pos
func (m *Manager) Remove(pos int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pos < 0 || pos >= len(m.chains) {
		return errors.Errorf("no chain at %d", pos)
	}
	removed := m.chains[pos]
	m.chains = append(m.chains[:pos], m.chains[pos+1:]...)
	m.version++

	switch {
	case len(m.chains) == 0:
		m.current = -1
	case m.current > pos || m.current >= len(m.chains):
		m.current--
	}
	debug.Log("chain", "removed %q from channel %d", removed.Name, removed.Channel)
	return nil
}

// Rename changes the legend of the chain at pos
func (m *Manager) Rename(pos int, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pos < 0 || pos >= len(m.chains) {
		return errors.Errorf("no chain at %d", pos)
	}
	m.chains[pos].Name = name
	m.version++
	return nil
}

// SetCurrent is the sink for the mixer selection
func (m *Manager) SetCurrent(pos int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if pos < 0 || pos >= len(m.chains) || pos == m.current {
		return
	}
	m.current = pos
	m.version++
}

// Current returns the current chain position, -1 when there are none
func (m *Manager) Current() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Version changes whenever the list or the current chain changes
func (m *Manager) Version() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}
