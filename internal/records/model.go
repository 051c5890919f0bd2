package records

// Record maps one meeting id to the image reference of its poster.
type Record struct {
	ID             string `json:"meetingId"`
	ImageReference string `json:"content"`
}

// Find returns the first record with the given id. Duplicate ids are allowed;
// later duplicates are never returned.
func Find(store []Record, id string) (Record, bool) {
	for _, rec := range store {
		if rec.ID == id {
			return rec, true
		}
	}
	return Record{}, false
}
