package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ticketing-svc/models"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestClient_InitializeTransaction_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/initialize" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/xyz","access_code":"xyz","reference":"ref_001"}}`))
	}))
	defer server.Close()

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	client := NewClient(server.URL, "sk_test_secret", logger)

	resp, err := client.InitializeTransaction(context.Background(), models.InitializePaymentRequest{
		Email:  "a@x.com",
		Name:   "Jane Doe",
		Amount: 500000,
		Cart:   []models.CartLine{{TicketType: "regular", Quantity: 2, Name: "Regular Ticket"}},
	})
	if err != nil {
		t.Fatalf("InitializeTransaction returned error: %v", err)
	}

	if gotAuth != "Bearer sk_test_secret" {
		t.Errorf("Expected bearer auth header, got %q", gotAuth)
	}
	if resp.Data.Reference != "ref_001" {
		t.Errorf("Expected reference ref_001, got %q", resp.Data.Reference)
	}

	metadata, ok := gotBody["metadata"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected metadata in request body")
	}
	if metadata["full_name"] != "Jane Doe" {
		t.Errorf("Expected full_name in metadata, got %v", metadata["full_name"])
	}
	if _, ok := metadata["cart"].([]interface{}); !ok {
		t.Error("Expected cart array in metadata")
	}
}

func TestClient_InitializeTransaction_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer server.Close()

	logger := zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))
	client := NewClient(server.URL, "sk_bad_key", logger)

	_, err := client.InitializeTransaction(context.Background(), models.InitializePaymentRequest{
		Email:  "a@x.com",
		Name:   "Jane Doe",
		Amount: 500000,
		Cart:   []models.CartLine{{TicketType: "regular", Quantity: 1, Name: "Regular Ticket"}},
	})
	if err == nil {
		t.Fatal("Expected error for provider rejection")
	}
}
