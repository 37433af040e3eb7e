package record

import (
	"testing"

	"leadscout/internal/model"
)

func TestBuildFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		listing model.Listing
		ex      model.ExtractionResult
		want    model.ContactRecord
	}{
		{
			name:    "Extracted fields win",
			listing: model.Listing{Name: "Acme Plumbing", Website: "http://acme.test", Phone: "(804) 555-1111"},
			ex:      model.ExtractionResult{Email: "jane@acme.test", OwnerName: "Jane Smith", Phone: "+1-804-555-2222"},
			want: model.ContactRecord{
				BusinessName: "Acme Plumbing",
				OwnerName:    "Jane Smith",
				Email:        "jane@acme.test",
				Phone:        "+1-804-555-2222",
				Website:      "http://acme.test",
			},
		},
		{
			name:    "No website, empty extraction, provider fields stand",
			listing: model.Listing{Name: "Joe's Cafe", Phone: "804-555-0000"},
			ex:      model.ExtractionResult{},
			want: model.ContactRecord{
				BusinessName: "Joe's Cafe",
				OwnerName:    "Joe's Cafe",
				Phone:        "804-555-0000",
			},
		},
		{
			name:    "Nothing anywhere",
			listing: model.Listing{Name: "Mystery Shop"},
			ex:      model.ExtractionResult{},
			want: model.ContactRecord{
				BusinessName: "Mystery Shop",
				OwnerName:    "Mystery Shop",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Build(tt.listing, tt.ex); got != tt.want {
				t.Errorf("Build() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDedupKeyDerivation(t *testing.T) {
	withEmail := Build(
		model.Listing{Name: "Joe's Cafe", Phone: "804-555-0000"},
		model.ExtractionResult{Email: "Contact@JoesCafe.test"},
	)
	if got, want := withEmail.DedupKey(), "contact@joescafe.test"; got != want {
		t.Errorf("DedupKey = %q, want %q", got, want)
	}

	noEmail := Build(model.Listing{Name: "Joe's Cafe", Phone: "804-555-0000"}, model.ExtractionResult{})
	if got, want := noEmail.DedupKey(), "Joe's Cafe|804-555-0000"; got != want {
		t.Errorf("DedupKey = %q, want %q", got, want)
	}
}
