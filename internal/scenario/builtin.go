package scenario

import (
	"fmt"
	"sort"
	"time"
)

// LIE3Way expects the LIE FSM of one interface to go from ONE_WAY through
// TWO_WAY to THREE_WAY. Our own LIE must follow NEW_NEIGHBOR within 100ms.
//
// The remote node may need timer ticks before it sees our first LIE, so the
// last two steps carry no delay bound and the final step tolerates repeated
// LIE_RECEIVED events.
func LIE3Way(systemID, iface string) *Scenario {
	return &Scenario{
		Name:   "lie-3way",
		Target: systemID + "-" + iface,
		Steps: []Step{
			{From: "ONE_WAY", Event: "LIE_RECEIVED", To: "None", Skip: []string{"TIMER_TICK", "SEND_LIE"}},
			{From: "ONE_WAY", Event: "NEW_NEIGHBOR", To: "TWO_WAY", Skip: []string{"TIMER_TICK", "SEND_LIE"}},
			{From: "TWO_WAY", Event: "SEND_LIE", To: "None", Skip: []string{"TIMER_TICK"}, MaxDelay: Delay(100 * time.Millisecond)},
			{From: "TWO_WAY", Event: "LIE_RECEIVED", To: "None", Skip: []string{"TIMER_TICK", "SEND_LIE"}},
			{From: "TWO_WAY", Event: "VALID_REFLECTION", To: "THREE_WAY", Skip: []string{"TIMER_TICK", "SEND_LIE", "LIE_RECEIVED"}},
		},
	}
}

var builtins = map[string]func(systemID, iface string) *Scenario{
	"lie-3way": LIE3Way,
}

func Builtin(name, systemID, iface string) (*Scenario, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q (have %v)", name, BuiltinNames())
	}
	return build(systemID, iface), nil
}

func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
