package model

// AvailableItem is a sterilized work item ready to be issued.
// Its ID is the id of the underlying request or surgery record.
type AvailableItem struct {
	ID              string `json:"id"`
	Department      string `json:"department"`
	Items           Items  `json:"items"`
	Quantity        Count  `json:"quantity"`
	Status          string `json:"status"`
	ReadyTime       string `json:"readyTime"`
	SterilizationID string `json:"sterilizationId,omitempty"`
	Machine         string `json:"machine,omitempty"`
	Process         string `json:"process,omitempty"`
}

// IssueItem records items handed out to a department.
type IssueItem struct {
	ID              string `json:"id"`
	RequestID       string `json:"requestId"`
	Department      string `json:"department"`
	Items           Items  `json:"items"`
	Quantity        Count  `json:"quantity"`
	IssuedTime      string `json:"issuedTime"`
	IssuedDate      string `json:"issuedDate"`
	Status          string `json:"status"`
	SterilizationID string `json:"sterilizationId,omitempty"`
}

// Availability and issue statuses.
const (
	AvailableStatusSterilized = "Sterilized"
	IssueStatusIssued         = "Issued"
	IssueStatusNonSterilized  = "Issued (Non-Sterilized)"
)

// DefaultItemsLabel names the contents of an available item whose origin is unknown.
const DefaultItemsLabel = "Sterilized Item"
