package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"leadscout/internal/model"
)

const defaultPlacesBaseURL = "https://maps.googleapis.com/maps/api/place"

// PlacesSource queries the Places text-search API for businesses matching
// "<category> in <location>" and resolves each hit's website and phone via
// the details endpoint.
type PlacesSource struct {
	logger       *slog.Logger
	client       *http.Client
	baseURL      string
	apiKey       string
	location     string
	radiusMeters int
	maxResults   int
	pageDelay    time.Duration
}

type PlacesOptions struct {
	BaseURL      string // override for tests; empty means the real API
	Location     string
	RadiusMeters int
	MaxResults   int           // cap across pages; zero means 60
	PageDelay    time.Duration // wait before reusing a continuation token
	Timeout      time.Duration
}

func NewPlacesSource(logger *slog.Logger, apiKey string, opts PlacesOptions) *PlacesSource {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultPlacesBaseURL
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = 60
	}
	if opts.PageDelay <= 0 {
		opts.PageDelay = 2 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &PlacesSource{
		logger:       logger,
		client:       &http.Client{Timeout: opts.Timeout},
		baseURL:      opts.BaseURL,
		apiKey:       apiKey,
		location:     opts.Location,
		radiusMeters: opts.RadiusMeters,
		maxResults:   opts.MaxResults,
		pageDelay:    opts.PageDelay,
	}
}

func (s *PlacesSource) Name() string { return "Places" }

type searchResponse struct {
	Results []struct {
		Name    string `json:"name"`
		PlaceID string `json:"place_id"`
	} `json:"results"`
	NextPageToken string `json:"next_page_token"`
	Status        string `json:"status"`
}

type detailsResponse struct {
	Result struct {
		Name                 string `json:"name"`
		Website              string `json:"website"`
		FormattedPhoneNumber string `json:"formatted_phone_number"`
	} `json:"result"`
	Status string `json:"status"`
}

// Search pages through text-search results for the category, honoring the
// mandatory pause before a continuation token becomes valid.
func (s *PlacesSource) Search(ctx context.Context, category string) ([]model.Listing, error) {
	var listings []model.Listing
	pageToken := ""

	for {
		page, err := s.searchPage(ctx, category, pageToken)
		if err != nil {
			return listings, err
		}

		for _, hit := range page.Results {
			if len(listings) >= s.maxResults {
				return listings, nil
			}
			listing := model.Listing{Name: hit.Name}
			if det, err := s.details(ctx, hit.PlaceID); err != nil {
				s.logger.Debug("Details lookup failed", "place_id", hit.PlaceID, "err", err)
			} else {
				listing.Website = det.Result.Website
				listing.Phone = det.Result.FormattedPhoneNumber
			}
			listings = append(listings, listing)
		}

		if page.NextPageToken == "" || len(listings) >= s.maxResults {
			return listings, nil
		}
		pageToken = page.NextPageToken

		select {
		case <-time.After(s.pageDelay):
		case <-ctx.Done():
			return listings, ctx.Err()
		}
	}
}

func (s *PlacesSource) searchPage(ctx context.Context, category, pageToken string) (*searchResponse, error) {
	params := url.Values{}
	params.Set("query", fmt.Sprintf("%s in %s", category, s.location))
	params.Set("radius", fmt.Sprintf("%d", s.radiusMeters))
	params.Set("key", s.apiKey)
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	}

	var out searchResponse
	if err := s.getJSON(ctx, s.baseURL+"/textsearch/json?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	if out.Status != "" && out.Status != "OK" && out.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places search status %s", out.Status)
	}
	return &out, nil
}

func (s *PlacesSource) details(ctx context.Context, placeID string) (*detailsResponse, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "name,website,formatted_phone_number")
	params.Set("key", s.apiKey)

	var out detailsResponse
	if err := s.getJSON(ctx, s.baseURL+"/details/json?"+params.Encode(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *PlacesSource) getJSON(ctx context.Context, target string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}
