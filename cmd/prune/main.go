package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"leadscout/internal/storage"
)

func main() {
	name := flag.String("name", "", "Business name to delete")
	email := flag.String("email", "", "Contact email to delete")
	category := flag.String("category", "", "Category to match")
	runID := flag.String("run", "", "Run ID to match")
	dbPath := flag.String("db", "data/leadscout.duckdb", "Path to DuckDB file")
	flag.Parse()

	// Check if at least one filter flag was explicitly provided
	hasFilters := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "name" || f.Name == "email" || f.Name == "category" || f.Name == "run" {
			hasFilters = true
		}
	})
	if !hasFilters {
		fmt.Fprintf(os.Stderr, "Error: at least one filter is required (-name, -email, -category, or -run)\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	repo, err := storage.NewDuckDBRepo(*dbPath, logger)
	if err != nil {
		logger.Error("DB connection failed", "err", err)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()

	filters := map[string]interface{}{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			filters["name"] = *name
		case "email":
			filters["email"] = *email
		case "category":
			filters["category"] = *category
		case "run":
			filters["run"] = *runID
		}
	})

	// Confirm deletion
	fmt.Println("\nDelete contacts matching:")
	for k, v := range filters {
		fmt.Printf("  %s: %v\n", k, v)
	}
	fmt.Print("\nAre you sure? (yes/no): ")

	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.ToLower(strings.TrimSpace(response))
	if response != "yes" && response != "y" {
		fmt.Println("Cancelled.")
		os.Exit(0)
	}

	rowsDeleted, err := repo.DeleteContacts(ctx, filters)
	if err != nil {
		logger.Error("Delete failed", "filters", filters, "err", err)
		os.Exit(1)
	}

	if rowsDeleted == 0 {
		logger.Warn("No records matched the filters", "filters", filters)
	} else {
		logger.Info("Deleted successfully", "filters", filters, "rows_deleted", rowsDeleted)
	}
}
