package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"leadscout/internal/extract"
	"leadscout/internal/model"
	"leadscout/internal/normalize"
	"leadscout/internal/runlog"
)

type fakeSearcher struct {
	listings map[string][]model.Listing
	err      error
}

func (f *fakeSearcher) Name() string { return "fake" }

func (f *fakeSearcher) Search(ctx context.Context, category string) ([]model.Listing, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.listings[category], nil
}

type fakeFetcher struct {
	pages map[string]string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) string {
	return f.pages[url]
}

type upsertCall struct {
	rec    model.ContactRecord
	listID int
}

type fakeUploader struct {
	calls   []upsertCall
	failFor map[string]bool
}

func (f *fakeUploader) Upsert(ctx context.Context, rec model.ContactRecord, listID int) error {
	f.calls = append(f.calls, upsertCall{rec: rec, listID: listID})
	if f.failFor[rec.BusinessName] {
		return errors.New("status 400")
	}
	return nil
}

func newTestRunner(fetcher Fetcher, uploader Uploader, opts Options) *Runner {
	if opts.EmailListID == 0 {
		opts.EmailListID = 3
	}
	if opts.PhoneListID == 0 {
		opts.PhoneListID = 5
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	extractor := extract.New(normalize.NewFilter(nil))
	return NewRunner(logger, runlog.New(0), fetcher, extractor, uploader, nil, opts)
}

func TestRunEndToEndEmailContact(t *testing.T) {
	searcher := &fakeSearcher{listings: map[string][]model.Listing{
		"Coffee Shops": {
			{Name: "Joe's Cafe", Website: "http://joescafe.test", Phone: "804-555-0000"},
		},
	}}
	fetcher := &fakeFetcher{pages: map[string]string{
		"http://joescafe.test": `<html><body><p>Come visit! contact@joescafe.test</p></body></html>`,
	}}
	uploader := &fakeUploader{}

	r := newTestRunner(fetcher, uploader, Options{})
	stats, err := r.Run(context.Background(), searcher, []string{"Coffee Shops"}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Uploaded != 1 || stats.Found != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(uploader.calls) != 1 {
		t.Fatalf("got %d upserts, want 1", len(uploader.calls))
	}

	call := uploader.calls[0]
	want := model.ContactRecord{
		BusinessName: "Joe's Cafe",
		OwnerName:    "Joe's Cafe",
		Email:        "contact@joescafe.test",
		Phone:        "804-555-0000",
		Website:      "http://joescafe.test",
	}
	if call.rec != want {
		t.Errorf("record = %+v, want %+v", call.rec, want)
	}
	if call.listID != 3 {
		t.Errorf("routed to list %d, want email list 3", call.listID)
	}
}

func TestRunPhoneOnlyRouting(t *testing.T) {
	searcher := &fakeSearcher{listings: map[string][]model.Listing{
		"Plumbers": {
			{Name: "Acme Plumbing", Phone: "(804) 555-1111"},
		},
	}}
	uploader := &fakeUploader{}

	r := newTestRunner(&fakeFetcher{}, uploader, Options{})
	stats, err := r.Run(context.Background(), searcher, []string{"Plumbers"}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Uploaded != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if uploader.calls[0].listID != 5 {
		t.Errorf("routed to list %d, want phone list 5", uploader.calls[0].listID)
	}
	if uploader.calls[0].rec.OwnerName != "Acme Plumbing" {
		t.Errorf("owner fallback = %q", uploader.calls[0].rec.OwnerName)
	}
}

func TestRunDedupKeyUniqueness(t *testing.T) {
	// Two storefronts sharing one website (and thus one email), plus a
	// repeated name|phone pair: each key is uploaded exactly once.
	searcher := &fakeSearcher{listings: map[string][]model.Listing{
		"Gyms": {
			{Name: "FitCo Downtown", Website: "http://fitco.test"},
			{Name: "FitCo Midtown", Website: "http://fitco.test"},
			{Name: "Iron Works", Phone: "804-555-2222"},
			{Name: "Iron Works", Phone: "804-555-2222"},
		},
	}}
	fetcher := &fakeFetcher{pages: map[string]string{
		"http://fitco.test": `<p>Memberships: join@fitco.test</p>`,
	}}
	uploader := &fakeUploader{}

	r := newTestRunner(fetcher, uploader, Options{})
	stats, err := r.Run(context.Background(), searcher, []string{"Gyms"}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Uploaded != 2 || stats.Duplicates != 2 {
		t.Fatalf("stats = %+v, want 2 uploaded / 2 duplicates", stats)
	}

	keys := make(map[string]int)
	for _, c := range uploader.calls {
		keys[c.rec.DedupKey()]++
	}
	for k, n := range keys {
		if n != 1 {
			t.Errorf("key %q uploaded %d times", k, n)
		}
	}
}

func TestRunNoContact(t *testing.T) {
	searcher := &fakeSearcher{listings: map[string][]model.Listing{
		"Bars": {{Name: "Ghost Bar"}},
	}}
	uploader := &fakeUploader{}

	r := newTestRunner(&fakeFetcher{}, uploader, Options{})
	stats, err := r.Run(context.Background(), searcher, []string{"Bars"}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.NoContact != 1 || len(uploader.calls) != 0 {
		t.Errorf("stats = %+v, calls = %d", stats, len(uploader.calls))
	}
}

func TestRunUploadFailureContinues(t *testing.T) {
	searcher := &fakeSearcher{listings: map[string][]model.Listing{
		"Salons": {
			{Name: "Bad Salon", Phone: "804-555-3333"},
			{Name: "Good Salon", Phone: "804-555-4444"},
		},
	}}
	uploader := &fakeUploader{failFor: map[string]bool{"Bad Salon": true}}

	r := newTestRunner(&fakeFetcher{}, uploader, Options{})
	stats, err := r.Run(context.Background(), searcher, []string{"Salons"}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Errors != 1 || stats.Uploaded != 1 {
		t.Errorf("stats = %+v, want 1 error / 1 uploaded", stats)
	}
	if len(uploader.calls) != 2 {
		t.Errorf("got %d upsert calls, want 2", len(uploader.calls))
	}
}

func TestRunStopHonoredAfterMinResults(t *testing.T) {
	var listings []model.Listing
	for i := 0; i < 5; i++ {
		listings = append(listings, model.Listing{
			Name:  fmt.Sprintf("Shop %d", i),
			Phone: fmt.Sprintf("804-555-00%02d", i),
		})
	}
	searcher := &fakeSearcher{listings: map[string][]model.Listing{"Boutiques": listings}}
	uploader := &fakeUploader{}

	stop := NewStopToken()
	stop.Stop()

	r := newTestRunner(&fakeFetcher{}, uploader, Options{MinResults: 2})
	stats, err := r.Run(context.Background(), searcher, []string{"Boutiques"}, stop)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if stats.Uploaded != 2 {
		t.Errorf("uploaded %d before stop, want 2", stats.Uploaded)
	}
}

func TestRunSearchErrorLoggedAndSkipped(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("quota exceeded")}
	uploader := &fakeUploader{}
	buf := runlog.New(0)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	extractor := extract.New(normalize.NewFilter(nil))
	r := NewRunner(logger, buf, &fakeFetcher{}, extractor, uploader, nil, Options{EmailListID: 3, PhoneListID: 5})

	stats, err := r.Run(context.Background(), searcher, []string{"Gyms"}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Errors != 1 {
		t.Errorf("stats = %+v, want 1 error", stats)
	}

	joined := strings.Join(buf.Lines(), "\n")
	if !strings.Contains(joined, "Search failed for Gyms") {
		t.Errorf("run log missing search failure, got:\n%s", joined)
	}
}

func TestStopTokenIsIdempotent(t *testing.T) {
	stop := NewStopToken()
	if stop.Stopped() {
		t.Fatal("fresh token reports stopped")
	}
	stop.Stop()
	stop.Stop()
	if !stop.Stopped() {
		t.Fatal("token not stopped after Stop")
	}
}
