// Package record assembles final contact records from listing data and
// extraction output.
package record

import "leadscout/internal/model"

// Build merges a listing with whatever the extractor found. Extracted fields
// win over provider fields; the business name stands in for a missing owner.
// Pure assembly, no validation or filtering.
func Build(l model.Listing, ex model.ExtractionResult) model.ContactRecord {
	owner := ex.OwnerName
	if owner == "" {
		owner = l.Name
	}

	phone := ex.Phone
	if phone == "" {
		phone = l.Phone
	}

	return model.ContactRecord{
		BusinessName: l.Name,
		OwnerName:    owner,
		Email:        ex.Email,
		Phone:        phone,
		Website:      l.Website,
	}
}
