// Package mixer keeps the bank of visible mixer strips in step with the
// engine, the chain list and the four panel encoders.
package mixer

import "fmt"

// MaxChannels is the number of chain slots in the engine. The main bus lives
// at engine channel MaxChannels.
const (
	MaxChannels = 16
	MainChannel = MaxChannels
)

// Selected addresses the currently selected channel in setters
const Selected = -1

type refKind uint8

const (
	refChain refKind = iota
	refMain
)

// ChannelRef is either the main bus or a chain by list position
type ChannelRef struct {
	kind refKind
	pos  int
}

// MainBus is the reference to the always-present master output
var MainBus = ChannelRef{kind: refMain, pos: -1}

// ChainRef refers to the chain at position pos in the chain list
func ChainRef(pos int) ChannelRef {
	return ChannelRef{kind: refChain, pos: pos}
}

func (r ChannelRef) IsMain() bool {
	return r.kind == refMain
}

// Position returns the chain list position, or -1 for the main bus
func (r ChannelRef) Position() int {
	if r.kind == refMain {
		return -1
	}
	return r.pos
}

func (r ChannelRef) String() string {
	if r.kind == refMain {
		return "main"
	}
	return fmt.Sprintf("chain %d", r.pos+1)
}

// Chain is one processing chain as the mixer sees it
type Chain struct {
	Channel int    // engine channel
	Name    string // engine/preset legend
	Audio   bool   // false for MIDI-only chains
}

var mainChain = Chain{Channel: MainChannel, Name: "Main", Audio: true}

// ChainSource is the chain manager contract
type ChainSource interface {
	Chains() []Chain
	SetCurrent(pos int)
}
