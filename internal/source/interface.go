package source

import (
	"context"

	"leadscout/internal/model"
)

// Searcher returns business listings for a category within the geography the
// implementation was configured with.
type Searcher interface {
	Name() string
	Search(ctx context.Context, category string) ([]model.Listing, error)
}
