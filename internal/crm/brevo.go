// Package crm pushes finished contact records to the marketing CRM.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"leadscout/internal/model"
)

const defaultBrevoBaseURL = "https://api.brevo.com/v3"

// Uploader accepts one finished contact per non-duplicate record.
type Uploader interface {
	Upsert(ctx context.Context, rec model.ContactRecord, listID int) error
}

// BrevoClient talks to the Brevo contacts API.
type BrevoClient struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewBrevoClient(logger *slog.Logger, apiKey string, baseURL string, timeout time.Duration) *BrevoClient {
	if baseURL == "" {
		baseURL = defaultBrevoBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BrevoClient{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type contactAttributes struct {
	FirstName string `json:"FIRSTNAME"`
	Company   string `json:"COMPANY"`
	Phone     string `json:"PHONE"`
	Website   string `json:"WEBSITE"`
}

type contactPayload struct {
	Email         string            `json:"email,omitempty"`
	Attributes    contactAttributes `json:"attributes"`
	ListIDs       []int             `json:"listIds"`
	UpdateEnabled bool              `json:"updateEnabled"`
}

// Upsert posts the record to the given destination list. A non-2xx response
// comes back as an error carrying the status code; no retry happens here.
func (c *BrevoClient) Upsert(ctx context.Context, rec model.ContactRecord, listID int) error {
	payload := contactPayload{
		Email: rec.Email,
		Attributes: contactAttributes{
			FirstName: rec.OwnerName,
			Company:   rec.BusinessName,
			Phone:     rec.Phone,
			Website:   rec.Website,
		},
		ListIDs:       []int{listID},
		UpdateEnabled: true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/contacts", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("content-type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("crm upsert returned status %d", resp.StatusCode)
	}

	c.logger.Debug("Contact upserted", "email", rec.Email, "company", rec.BusinessName, "list", listID)
	return nil
}
