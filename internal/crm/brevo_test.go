package crm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadscout/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpsertPayloadShape(t *testing.T) {
	var gotPath, gotKey string
	var gotPayload map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("api-key")
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewBrevoClient(discardLogger(), "secret", srv.URL, 0)
	rec := model.ContactRecord{
		BusinessName: "Joe's Cafe",
		OwnerName:    "Joe's Cafe",
		Email:        "contact@joescafe.test",
		Phone:        "+1-804-555-0000",
		Website:      "http://joescafe.test",
	}
	if err := c.Upsert(context.Background(), rec, 3); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if gotPath != "/contacts" {
		t.Errorf("path = %q, want /contacts", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("api-key header = %q", gotKey)
	}
	if gotPayload["email"] != "contact@joescafe.test" {
		t.Errorf("email = %v", gotPayload["email"])
	}

	attrs, _ := gotPayload["attributes"].(map[string]any)
	if attrs["FIRSTNAME"] != "Joe's Cafe" || attrs["COMPANY"] != "Joe's Cafe" ||
		attrs["PHONE"] != "+1-804-555-0000" || attrs["WEBSITE"] != "http://joescafe.test" {
		t.Errorf("attributes = %v", attrs)
	}

	lists, _ := gotPayload["listIds"].([]any)
	if len(lists) != 1 || lists[0] != float64(3) {
		t.Errorf("listIds = %v", gotPayload["listIds"])
	}
}

func TestUpsertPhoneOnlyOmitsEmail(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotPayload)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewBrevoClient(discardLogger(), "secret", srv.URL, 0)
	rec := model.ContactRecord{BusinessName: "Acme", OwnerName: "Acme", Phone: "+1-804-555-1111"}
	if err := c.Upsert(context.Background(), rec, 5); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	if _, present := gotPayload["email"]; present {
		t.Errorf("empty email should be omitted, payload = %v", gotPayload)
	}
}

func TestUpsertNon2xxReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"invalid"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewBrevoClient(discardLogger(), "secret", srv.URL, 0)
	err := c.Upsert(context.Background(), model.ContactRecord{BusinessName: "X"}, 3)
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
}
