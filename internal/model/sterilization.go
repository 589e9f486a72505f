package model

import "strings"

// SterilizationProcess is one sterilization cycle of a work item on a machine.
type SterilizationProcess struct {
	ID          string `json:"id"`
	Machine     string `json:"machine"`
	Process     string `json:"process"`
	ItemID      string `json:"itemId"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Status      string `json:"status"`
	Duration    Count  `json:"duration"`
	StartedAt   string `json:"startedAt,omitempty"`
	PausedAt    string `json:"pausedAt,omitempty"`
	CompletedAt string `json:"completedAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Process statuses.
const (
	ProcessStatusInProgress = "In Progress"
	ProcessStatusPaused     = "Paused"
	ProcessStatusCompleted  = "Completed"
)

// InSterilization reports whether a process still occupies its work item.
func (p SterilizationProcess) InSterilization() bool {
	return p.Status == ProcessStatusInProgress || p.Status == ProcessStatusPaused
}

// Machine is a sterilizer.
type Machine struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Status string `json:"status" yaml:"status"`
}

// Method is a sterilization method with its nominal cycle length in minutes.
type Method struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Duration int    `json:"duration" yaml:"duration"`
}

// DefaultDuration is the cycle length, in minutes, used for unknown methods.
const DefaultDuration = 45

// DefaultMachines returns the sterilizers known out of the box.
func DefaultMachines() []Machine {
	return []Machine{
		{ID: "M1", Name: "Autoclave-1", Status: "Available"},
		{ID: "M2", Name: "Autoclave-2", Status: "In Use"},
		{ID: "M3", Name: "Autoclave-3", Status: "Maintenance"},
		{ID: "M4", Name: "Chemical Sterilizer-1", Status: "Available"},
	}
}

// DefaultMethods returns the sterilization methods known out of the box.
func DefaultMethods() []Method {
	return []Method{
		{ID: "S1", Name: "Steam Sterilization", Duration: 45},
		{ID: "S2", Name: "Chemical Sterilization", Duration: 75},
		{ID: "S3", Name: "Plasma Sterilization", Duration: 60},
	}
}

// MethodDuration returns the nominal duration of the named method, falling
// back to DefaultDuration when the method is unknown.
func MethodDuration(methods []Method, name string) int {
	for _, m := range methods {
		if strings.EqualFold(m.Name, name) && m.Duration > 0 {
			return m.Duration
		}
	}
	return DefaultDuration
}
