package domain

import "strings"

// Action is the categorical recommendation produced by the optimization
// advisor. The label strings are fixed contract values consumed by the
// dashboard; do not reword them.
type Action int

const (
	ActionRunSpecial Action = iota
	ActionStockSufficient
	ActionReorderNow
	ActionReorderSoon
	ActionRaiseBuffer
	ActionMonitorNormal
)

var actionLabels = map[Action]string{
	ActionRunSpecial:      "Run a special - high waste risk detected before expiry",
	ActionStockSufficient: "Stock appears sufficient - monitor regularly",
	ActionReorderNow:      "Reorder now - critical stock level",
	ActionReorderSoon:     "Reorder soon - approaching reorder point",
	ActionRaiseBuffer:     "Increase safety buffer - excess inventory detected",
	ActionMonitorNormal:   "Monitor closely - stock levels normal",
}

// Label returns the human-readable recommendation for an action code.
func (a Action) Label() string {
	if label, ok := actionLabels[a]; ok {
		return label
	}

	return actionLabels[ActionMonitorNormal]
}

// ParseAction returns the action code for a given label (case-insensitive).
func ParseAction(label string) (Action, bool) {
	for code, l := range actionLabels {
		if strings.EqualFold(l, label) {
			return code, true
		}
	}

	return 0, false
}
