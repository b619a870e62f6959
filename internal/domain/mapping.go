package domain

// DefaultDocType is the document type tag used when none is given.
const DefaultDocType = "default"

// Mapping is one persisted association between a local entity and a remote document.
type Mapping struct {
	RecordID int64 // store-assigned, not business-meaningful
	EntityID int64
	DocID    string
	DocType  string
}

// DocTypeOrDefault returns t, or DefaultDocType when t is empty.
func DocTypeOrDefault(t string) string {
	if t == "" {
		return DefaultDocType
	}
	return t
}

// DocIDs extracts document IDs from mappings, preserving order.
func DocIDs(mappings []Mapping) []string {
	ids := make([]string, len(mappings))
	for i, m := range mappings {
		ids[i] = m.DocID
	}
	return ids
}
