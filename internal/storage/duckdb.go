package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"leadscout/internal/model"
)

type DuckDBRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewDuckDBRepo(path string, logger *slog.Logger) (*DuckDBRepo, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}
	return &DuckDBRepo{db: db, logger: logger}, nil
}

func (r *DuckDBRepo) Init(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS contacts (
		dedup_key TEXT PRIMARY KEY,
		business_name TEXT,
		owner_name TEXT,
		email TEXT,
		phone TEXT,
		website TEXT,
		category TEXT,
		run_id TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);`
	_, err := r.db.ExecContext(ctx, query)
	return err
}

// SaveContact upserts by dedup key and reports whether the contact was new.
func (r *DuckDBRepo) SaveContact(ctx context.Context, rec model.ContactRecord, category, runID string) (bool, error) {
	key := rec.DedupKey()

	var exists bool
	_ = r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM contacts WHERE dedup_key = ?)", key).Scan(&exists)

	now := time.Now()
	query := `
	INSERT INTO contacts (dedup_key, business_name, owner_name, email, phone, website, category, run_id, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (dedup_key) DO UPDATE SET
		owner_name = EXCLUDED.owner_name,
		email = EXCLUDED.email,
		phone = EXCLUDED.phone,
		website = EXCLUDED.website,
		run_id = EXCLUDED.run_id,
		updated_at = EXCLUDED.updated_at;`

	_, err := r.db.ExecContext(ctx, query, key, rec.BusinessName, rec.OwnerName, rec.Email, rec.Phone, rec.Website, category, runID, now, now)
	return !exists, err
}

// SeenKeys returns every stored dedup key, used to warm a run's dedup set
// when cross-run deduplication is enabled.
func (r *DuckDBRepo) SeenKeys(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT dedup_key FROM contacts")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// ExportCSV writes contacts to a CSV file via DuckDB's COPY. An empty runID
// exports everything.
func (r *DuckDBRepo) ExportCSV(ctx context.Context, path, runID string) error {
	where := "1=1"
	if runID != "" {
		where = fmt.Sprintf("run_id = '%s'", strings.ReplaceAll(runID, "'", "''"))
	}

	query := fmt.Sprintf(`
		COPY (
			SELECT business_name, owner_name, email, phone, website, category
			FROM contacts
			WHERE %s
			ORDER BY business_name ASC
		) TO '%s' (HEADER, DELIMITER ',');`, where, path)

	_, err := r.db.ExecContext(ctx, query)
	return err
}

// DeleteContacts removes rows matching the given filters.
func (r *DuckDBRepo) DeleteContacts(ctx context.Context, filters map[string]interface{}) (int64, error) {
	var conditions []string
	var args []interface{}

	if name, ok := filters["name"].(string); ok {
		conditions = append(conditions, "lower(business_name) = ?")
		args = append(args, strings.ToLower(name))
	}

	if email, ok := filters["email"].(string); ok {
		conditions = append(conditions, "lower(email) = ?")
		args = append(args, strings.ToLower(email))
	}

	if category, ok := filters["category"].(string); ok {
		conditions = append(conditions, "category = ?")
		args = append(args, category)
	}

	if runID, ok := filters["run"].(string); ok {
		conditions = append(conditions, "run_id = ?")
		args = append(args, runID)
	}

	if len(conditions) == 0 {
		return 0, fmt.Errorf("no filters provided")
	}

	query := fmt.Sprintf("DELETE FROM contacts WHERE %s", strings.Join(conditions, " AND "))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *DuckDBRepo) Close() error {
	return r.db.Close()
}

func (r *DuckDBRepo) GetDB() *sql.DB {
	return r.db
}
