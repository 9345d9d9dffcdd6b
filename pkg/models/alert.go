package models

import "time"

// Alert is an incident raised against an Asset. DeviceID is a weak
// reference and may point at an asset that no longer exists.
type Alert struct {
	ID         string     `json:"id"`
	Timestamp  time.Time  `json:"timestamp"`
	Severity   Status     `json:"severity"`
	Message    string     `json:"message"`
	DeviceID   string     `json:"device_id"`
	Resolved   bool       `json:"resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	AIAnalysis string     `json:"ai_analysis,omitempty"`
}

// Active reports whether the alert is still open.
func (a Alert) Active() bool {
	return !a.Resolved
}

// Clone returns a copy of a that shares no pointers with the original.
func (a Alert) Clone() Alert {
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		a.ResolvedAt = &t
	}
	return a
}

// Diagnosis is the outcome of asking the diagnostic collaborator about an
// alert. OK distinguishes a generated answer from the fallback text.
type Diagnosis struct {
	AlertID     string    `json:"alert_id"`
	OK          bool      `json:"ok"`
	Text        string    `json:"text"`
	Reason      string    `json:"reason,omitempty"`
	Model       string    `json:"model,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}
