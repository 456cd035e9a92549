package gates

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUncontrollable is returned by an effect that cannot honor controls.
var ErrUncontrollable = errors.New("qgrid/gates: gate cannot be controlled")

// GateEffectError is returned by an effect that refuses to run. Context
// holds structured details for the caller.
type GateEffectError struct {
	Message string
	Context map[string]any
}

func (e *GateEffectError) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, e.Context[k])
	}
	return e.Message + " (" + strings.Join(parts, ", ") + ")"
}
