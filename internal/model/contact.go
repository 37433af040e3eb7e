package model

import "strings"

// Listing is a single business returned by the place search. It is read-only
// input to the pipeline; Website and Phone may be empty.
type Listing struct {
	Name    string
	Website string
	Phone   string // provider-formatted, e.g. "(804) 555-1234"
}

// ExtractionResult holds whatever the page heuristics managed to find.
// Any field may be empty when no pattern matched.
type ExtractionResult struct {
	Email     string
	OwnerName string
	Phone     string
}

// ContactRecord is the finalized contact handed to the CRM and the exporter.
type ContactRecord struct {
	BusinessName string
	OwnerName    string // falls back to BusinessName
	Email        string
	Phone        string // best available, normalized or raw
	Website      string
}

// DedupKey identifies a contact within a run: the lowercased email when we
// have one, otherwise name|phone.
func (c *ContactRecord) DedupKey() string {
	if c.Email != "" {
		return strings.ToLower(c.Email)
	}
	return c.BusinessName + "|" + c.Phone
}

// HasContact reports whether the record is worth uploading at all.
func (c *ContactRecord) HasContact() bool {
	return c.Email != "" || c.Phone != ""
}
