package model

// Request is a department's request for sterile items.
type Request struct {
	ID          string `json:"id"`
	Department  string `json:"department"`
	Items       Items  `json:"items"`
	Quantity    Count  `json:"quantity"`
	Priority    string `json:"priority"`
	RequestedBy string `json:"requestedBy,omitempty"`
	Status      string `json:"status"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// ReceiveItem mirrors a request once it is logged as physically received.
type ReceiveItem struct {
	ID           string `json:"id"`
	RequestID    string `json:"requestId,omitempty"`
	Department   string `json:"department"`
	Items        Items  `json:"items"`
	Quantity     Count  `json:"quantity"`
	Priority     string `json:"priority"`
	RequestedBy  string `json:"requestedBy,omitempty"`
	Status       string `json:"status"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	ReceivedDate string `json:"receivedDate,omitempty"`
	ReceivedTime string `json:"receivedTime,omitempty"`
}

// Request statuses.
const (
	RequestStatusRequested  = "Requested"
	RequestStatusInProgress = "In Progress"
	RequestStatusApproved   = "Approved"
	RequestStatusRejected   = "Rejected"
	RequestStatusCompleted  = "Completed"
)

// Receive item statuses.
const (
	ReceiveStatusPending  = "Pending"
	ReceiveStatusApproved = "Approved"
	ReceiveStatusRejected = "Rejected"
)

// Priorities.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// ActiveRequest reports whether a request still waits for sterilization or issue.
func ActiveRequest(status string) bool {
	return status == RequestStatusRequested || status == RequestStatusInProgress
}
