package pods

import (
	"fmt"
	"sort"
	"sync"
)

var (
	mu       sync.RWMutex
	registry = map[Opcode]Pod{}
)

func init() {
	Register(unitaryPod{})
	Register(cycleAllPod{})
	Register(incrementPod{})
}

// Register adds p, replacing any pod with the same name.
func Register(p Pod) {
	mu.Lock()
	defer mu.Unlock()
	registry[p.Name()] = p
}

// Lookup returns the pod for op.
func Lookup(op Opcode) (Pod, error) {
	mu.RLock()
	defer mu.RUnlock()
	p, ok := registry[op]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, op)
	}
	return p, nil
}

// Names lists the registered opcodes in order.
func Names() []Opcode {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Opcode, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
