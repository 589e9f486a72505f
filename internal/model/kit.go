package model

// CreatedKit is a named bundle of items requested together.
type CreatedKit struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Department  string `json:"department"`
	Items       Items  `json:"items"`
	Quantity    Count  `json:"quantity"`
	Priority    string `json:"priority"`
	RequestedBy string `json:"requestedBy,omitempty"`
	Status      string `json:"status"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// KitStatusActive is the status of a freshly created kit.
const KitStatusActive = "Active"
