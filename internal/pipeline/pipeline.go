// Package pipeline runs one end-to-end sweep: search, fetch, extract,
// normalize, dedupe, build, upload.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"leadscout/internal/dedupe"
	"leadscout/internal/extract"
	"leadscout/internal/model"
	"leadscout/internal/normalize"
	"leadscout/internal/record"
	"leadscout/internal/runlog"
	"leadscout/internal/source"
)

// Fetcher retrieves a website's text; failures come back as "".
type Fetcher interface {
	Fetch(ctx context.Context, url string) string
}

// Uploader receives exactly one call per non-duplicate contact.
type Uploader interface {
	Upsert(ctx context.Context, rec model.ContactRecord, listID int) error
}

// Store persists contacts for export and optional cross-run dedupe. May be nil.
type Store interface {
	SaveContact(ctx context.Context, rec model.ContactRecord, category, runID string) (bool, error)
}

// StopToken requests a cooperative stop, checked at listing boundaries.
type StopToken struct {
	once sync.Once
	ch   chan struct{}
}

func NewStopToken() *StopToken {
	return &StopToken{ch: make(chan struct{})}
}

// Stop requests the run to wind down. Safe to call more than once.
func (t *StopToken) Stop() {
	t.once.Do(func() { close(t.ch) })
}

// Stopped reports whether a stop has been requested.
func (t *StopToken) Stopped() bool {
	select {
	case <-t.ch:
		return true
	default:
		return false
	}
}

// Stats counts per-run pipeline outcomes.
type Stats struct {
	Found      int
	Uploaded   int
	Duplicates int
	NoContact  int
	Errors     int
}

type Options struct {
	Pace        time.Duration // delay between listings; zero disables pacing
	MinResults  int           // uploads required before a stop request is honored
	EmailListID int
	PhoneListID int
	PhonePolicy normalize.PhonePolicy
	WarmKeys    []string // dedup keys carried over from previous runs
}

// Runner owns all run-scoped state. Build one per run.
type Runner struct {
	logger    *slog.Logger
	buf       *runlog.Buffer
	fetcher   Fetcher
	extractor *extract.Extractor
	uploader  Uploader
	store     Store
	opts      Options
	runID     string
}

func NewRunner(logger *slog.Logger, buf *runlog.Buffer, fetcher Fetcher, extractor *extract.Extractor, uploader Uploader, store Store, opts Options) *Runner {
	return &Runner{
		logger:    logger,
		buf:       buf,
		fetcher:   fetcher,
		extractor: extractor,
		uploader:  uploader,
		store:     store,
		opts:      opts,
		runID:     time.Now().Format("20060102_150405"),
	}
}

// RunID identifies this run in the contact store and export filenames.
func (r *Runner) RunID() string {
	return r.runID
}

// log writes to both the structured logger and the pollable run log.
func (r *Runner) log(msg string, args ...any) {
	r.buf.Appendf("%s", msg)
	r.logger.Info(msg, args...)
}

// Run processes every category sequentially. Listings never fail the run;
// only a cancelled context does.
func (r *Runner) Run(ctx context.Context, searcher source.Searcher, categories []string, stop *StopToken) (*Stats, error) {
	stats := &Stats{}
	seen := dedupe.NewSet()
	seen.Warm(r.opts.WarmKeys)

	var limiter *rate.Limiter
	if r.opts.Pace > 0 {
		limiter = rate.NewLimiter(rate.Every(r.opts.Pace), 1)
	}

	r.buf.Reset()
	r.log("Starting lead scraper...")

	for _, category := range categories {
		if r.shouldStop(stop, stats) {
			break
		}

		listings, err := searcher.Search(ctx, category)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			stats.Errors++
			r.log(fmt.Sprintf("Search failed for %s: %v", category, err), "category", category, "err", err)
			continue
		}
		r.log(fmt.Sprintf("Found %d results for %s.", len(listings), category), "category", category, "count", len(listings))
		stats.Found += len(listings)

		for _, listing := range listings {
			if r.shouldStop(stop, stats) {
				r.log("Stop requested, winding down.")
				r.finish(stats, categories)
				return stats, nil
			}

			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return stats, err
				}
			}

			r.processListing(ctx, listing, category, seen, stats)
		}
	}

	r.finish(stats, categories)
	return stats, nil
}

func (r *Runner) processListing(ctx context.Context, listing model.Listing, category string, seen *dedupe.Set, stats *Stats) {
	text := r.fetcher.Fetch(ctx, listing.Website)
	ex := r.extractor.Extract(text)
	ex.Phone = normalize.NormalizePhone(ex.Phone, r.opts.PhonePolicy)

	rec := record.Build(listing, ex)

	if !rec.HasContact() {
		stats.NoContact++
		r.log(fmt.Sprintf("No contact for %s", rec.BusinessName))
		return
	}

	if seen.IsDuplicate(&rec) {
		stats.Duplicates++
		r.log(fmt.Sprintf("Duplicate %s", rec.DedupKey()))
		return
	}
	// Mark before uploading so a failed upload is never retried within the
	// run: the contract is one call per non-duplicate record.
	seen.MarkSeen(&rec)

	listID := r.opts.PhoneListID
	if rec.Email != "" {
		listID = r.opts.EmailListID
	}

	if err := r.uploader.Upsert(ctx, rec, listID); err != nil {
		stats.Errors++
		r.log(fmt.Sprintf("Upload failed for %s: %v", rec.BusinessName, err), "err", err)
	} else {
		stats.Uploaded++
		if rec.Email != "" {
			r.log(fmt.Sprintf("%s (%s) owner: %s", rec.BusinessName, rec.Email, rec.OwnerName))
		} else {
			r.log(fmt.Sprintf("%s added (no email)", rec.BusinessName))
		}
	}

	if r.store != nil {
		if _, err := r.store.SaveContact(ctx, rec, category, r.runID); err != nil {
			r.logger.Error("Save failed", "name", rec.BusinessName, "err", err)
		}
	}
}

func (r *Runner) shouldStop(stop *StopToken, stats *Stats) bool {
	return stop != nil && stop.Stopped() && stats.Uploaded >= r.opts.MinResults
}

func (r *Runner) finish(stats *Stats, categories []string) {
	r.log(fmt.Sprintf("Finished %d uploads across %d categories.", stats.Uploaded, len(categories)),
		"found", stats.Found,
		"uploaded", stats.Uploaded,
		"duplicates", stats.Duplicates,
		"no_contact", stats.NoContact,
		"errors", stats.Errors)
}
