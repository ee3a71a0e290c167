package rdt

import (
	"fmt"
	"sort"

	"github.com/rdtlab/rdtlab/sim"
)

// DefaultProtocol is the pair used when the caller names nothing.
const DefaultProtocol = "stopwait"

// ValidProtocols names the built-in sender/receiver pairs.
var ValidProtocols = map[string]bool{
	"naive":    true,
	"stopwait": true,
	"gbn":      true,
}

// Names returns the built-in protocol names in sorted order.
func Names() []string {
	names := make([]string, 0, len(ValidProtocols))
	for name := range ValidProtocols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewPair builds a fresh sender/receiver pair for the named protocol.
// Protocol names come from user input, so unknown names are an error,
// not a panic.
func NewPair(name string) (sim.Protocol, sim.Protocol, error) {
	switch name {
	case "naive":
		return &NaiveSender{}, &NaiveReceiver{}, nil
	case "stopwait":
		return &StopWaitSender{}, &StopWaitReceiver{}, nil
	case "gbn":
		return NewGoBackNSender(), &GoBackNReceiver{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown protocol %q (valid: %v)", name, Names())
	}
}
