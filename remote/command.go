// Package remote accepts mixer commands over OSC and queues them for the
// tick.
package remote

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"go-mixsurface/mixer"
)

// Kind is the mixer parameter a command sets
type Kind int

const (
	Volume Kind = iota
	Balance
	Mute
	Solo
)

func (k Kind) String() string {
	switch k {
	case Volume:
		return "VOLUME"
	case Balance:
		return "BALANCE"
	case Mute:
		return "MUTE"
	case Solo:
		return "SOLO"
	}
	return "?"
}

// Command is one parsed remote message
type Command struct {
	Kind  Kind
	Index int
	Value float64
}

// address prefixes, longest match first
var prefixes = []struct {
	name string
	kind Kind
}{
	{"VOLUME", Volume},
	{"FADER", Volume},
	{"BALANCE", Balance},
	{"MUTE", Mute},
	{"SOLO", Solo},
}

// Parse decodes an address such as /mixer/VOLUME3 with one numeric argument
func Parse(root, address string, args []interface{}) (Command, error) {
	path := address
	if root != "" {
		root = "/" + strings.Trim(root, "/") + "/"
		if !strings.HasPrefix(path, root) {
			return Command{}, errors.Errorf("%s: not under %s", address, root)
		}
		path = path[len(root):]
	} else {
		path = strings.TrimPrefix(path, "/")
	}

	for _, p := range prefixes {
		if !strings.HasPrefix(path, p.name) {
			continue
		}
		suffix := path[len(p.name):]
		if suffix == "" || strings.Trim(suffix, "0123456789") != "" {
			return Command{}, errors.Errorf("%s: bad channel suffix %q", address, suffix)
		}
		idx, err := strconv.Atoi(suffix)
		if err != nil {
			return Command{}, errors.Wrapf(err, "%s: bad channel suffix", address)
		}
		if len(args) != 1 {
			return Command{}, errors.Errorf("%s: want 1 argument, got %d", address, len(args))
		}
		v, err := number(args[0])
		if err != nil {
			return Command{}, errors.Wrap(err, address)
		}
		return Command{Kind: p.kind, Index: idx, Value: v}, nil
	}
	return Command{}, errors.Errorf("%s: unknown command", address)
}

func number(arg interface{}) (float64, error) {
	switch v := arg.(type) {
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return 0, errors.Errorf("argument %v (%T) is not a number", arg, arg)
}

// Apply runs cmd against the mixer
func Apply(c *mixer.Controller, cmd Command) {
	switch cmd.Kind {
	case Volume:
		c.SetVolume(cmd.Index, cmd.Value)
	case Balance:
		c.SetBalance(cmd.Index, cmd.Value)
	case Mute:
		c.SetMute(cmd.Index, cmd.Value != 0)
	case Solo:
		c.SetSolo(cmd.Index, cmd.Value != 0)
	}
}
