package storage

import (
	"context"

	"leadscout/internal/model"
)

type Repository interface {
	Init(ctx context.Context) error
	SaveContact(ctx context.Context, rec model.ContactRecord, category, runID string) (bool, error)
	SeenKeys(ctx context.Context) ([]string, error)
	ExportCSV(ctx context.Context, path, runID string) error
	Close() error
}
