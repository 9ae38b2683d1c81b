package mixer

// EventKind names what the front-end has to do after a controller call
type EventKind int

const (
	EventHighlight    EventKind = iota // selection moved, Strip is the new highlight
	EventRebind                        // strip bindings changed
	EventTitle                         // title text changed
	EventEditPanel                     // edit panel shown (Index >= 0) or hidden (Index = -1)
	EventOpenChain                     // open the chain control screen for Index
	EventChainOptions                  // open the chain options for Index
	EventSnapshots                     // open the snapshot screen
)

func (k EventKind) String() string {
	switch k {
	case EventHighlight:
		return "highlight"
	case EventRebind:
		return "rebind"
	case EventTitle:
		return "title"
	case EventEditPanel:
		return "edit-panel"
	case EventOpenChain:
		return "open-chain"
	case EventChainOptions:
		return "chain-options"
	case EventSnapshots:
		return "snapshots"
	}
	return "unknown"
}

// Event is posted by the controller and drained by the front-end
type Event struct {
	Kind  EventKind
	Strip *Strip
	Index int
}
