package model

// ConsumptionRecord tracks item usage for one surgery.
// Used is taken as entered and is not derived from Before and After.
type ConsumptionRecord struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Dept      string `json:"dept"`
	Date      string `json:"date"`
	Before    Count  `json:"before"`
	After     Count  `json:"after"`
	Used      Count  `json:"used"`
	Items     Items  `json:"items"`
	RequestID string `json:"requestId,omitempty"`
	KitID     string `json:"kitId,omitempty"`
}
