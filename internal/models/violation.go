package models

import "time"

// ViolationKind identifies a class of integrity-policy breach.
type ViolationKind string

const (
	ViolationTabSwitch      ViolationKind = "TAB_SWITCH"
	ViolationFullscreenExit ViolationKind = "FULLSCREEN_EXIT"
	ViolationInactivity     ViolationKind = "INACTIVITY"
	ViolationLargePaste     ViolationKind = "LARGE_PASTE"
	ViolationDevToolsOpen   ViolationKind = "DEV_TOOLS_OPEN"
)

// IntegrityViolation records one detected breach. The log is append-only;
// the count of entries drives escalation.
type IntegrityViolation struct {
	Kind       ViolationKind `json:"kind"`
	Message    string        `json:"message"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// BrowserWarning is the server-side record of a reported violation.
type BrowserWarning struct {
	Type       string    `json:"type"`
	Message    string    `json:"message"`
	IsTerminal bool      `json:"is_terminal"`
	ReportedAt time.Time `json:"reported_at"`
}
