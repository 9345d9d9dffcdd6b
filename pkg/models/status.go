package models

// Status is the health of an asset or store and the severity of an alert.
type Status string

const (
	StatusNormal   Status = "normal"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
)

// StatusStyle describes how a Status is ranked and presented by the dashboard.
// Icon identifiers use Lucide icon names (https://lucide.dev).
type StatusStyle struct {
	Label  string `json:"label"`
	Rank   int    `json:"rank"`
	Color  string `json:"color"`
	Icon   string `json:"icon"`
	Online bool   `json:"online"`
}

// StatusStyles is the dispatch table for per-status behavior. Callers look
// up a style here instead of branching on the status value.
var StatusStyles = map[Status]StatusStyle{
	StatusNormal: {
		Label:  "Online",
		Rank:   0,
		Color:  "emerald",
		Icon:   "check-circle-2",
		Online: true,
	},
	StatusWarning: {
		Label: "Offline",
		Rank:  1,
		Color: "amber",
		Icon:  "alert-circle",
	},
	StatusCritical: {
		Label: "Offline",
		Rank:  2,
		Color: "rose",
		Icon:  "x-circle",
	},
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := StatusStyles[s]
	return ok
}

// Style returns the presentation style for s.
// Unknown statuses get a neutral style ranked below normal.
func (s Status) Style() StatusStyle {
	if st, ok := StatusStyles[s]; ok {
		return st
	}
	return StatusStyle{Label: "N/A", Rank: -1, Color: "slate", Icon: "help-circle"}
}

// Rank orders statuses by severity (normal < warning < critical).
func (s Status) Rank() int {
	return s.Style().Rank
}

// Usage thresholds for CPU and disk indicators.
const (
	UsageWarnAbove     = 60
	UsageCriticalAbove = 80
)

// UsageLevel maps a utilization percentage to the status band it is drawn in.
func UsageLevel(pct int) Status {
	switch {
	case pct > UsageCriticalAbove:
		return StatusCritical
	case pct > UsageWarnAbove:
		return StatusWarning
	default:
		return StatusNormal
	}
}
