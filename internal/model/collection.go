package model

// Collection names exposed by the collection store.
const (
	CollectionRequests     = "cssd_requests"
	CollectionReceiveItems = "receive_items"
	CollectionProcesses    = "sterilizationProcesses"
	CollectionAvailable    = "availableItems"
	CollectionIssues       = "issueItems"
	CollectionStock        = "stockItems"
	CollectionConsumption  = "consumptionRecords"
	CollectionKits         = "createdKits"
)

// collectionPrefixes maps each known collection to the prefix used for
// generated record ids (REQ001, STE002, ...).
var collectionPrefixes = map[string]string{
	CollectionRequests:     "REQ",
	CollectionReceiveItems: "REC",
	CollectionProcesses:    "STE",
	CollectionAvailable:    "AVL",
	CollectionIssues:       "ISS",
	CollectionStock:        "STK",
	CollectionConsumption:  "SUR",
	CollectionKits:         "KIT",
}

// KnownCollection reports whether name is one of the collections the store serves.
func KnownCollection(name string) bool {
	_, ok := collectionPrefixes[name]
	return ok
}

// IDPrefix returns the id prefix for a collection, or "" for unknown collections.
func IDPrefix(collection string) string {
	return collectionPrefixes[collection]
}

// Collections returns the names of all known collections.
func Collections() []string {
	return []string{
		CollectionRequests,
		CollectionReceiveItems,
		CollectionProcesses,
		CollectionAvailable,
		CollectionIssues,
		CollectionStock,
		CollectionConsumption,
		CollectionKits,
	}
}
