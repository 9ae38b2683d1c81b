package app

import "go-mixsurface/leds"

// Navigator is the screen stack. The root screen can't be popped.
type Navigator struct {
	stack []leds.Screen
}

func NewNavigator(root leds.Screen) *Navigator {
	return &Navigator{stack: []leds.Screen{root}}
}

func (n *Navigator) Current() leds.Screen {
	return n.stack[len(n.stack)-1]
}

// Push shows name. A screen already on the stack is brought back by
// dropping everything above it.
func (n *Navigator) Push(name leds.Screen) {
	for i, s := range n.stack {
		if s == name {
			n.stack = n.stack[:i+1]
			return
		}
	}
	n.stack = append(n.stack, name)
}

// Pop returns false at the root
func (n *Navigator) Pop() bool {
	if len(n.stack) == 1 {
		return false
	}
	n.stack = n.stack[:len(n.stack)-1]
	return true
}

func (n *Navigator) Depth() int {
	return len(n.stack)
}
