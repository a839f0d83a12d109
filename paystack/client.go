package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ticketing-svc/models"

	"go.uber.org/zap"
)

// Client is a thin wrapper over the Paystack transaction API. Only
// initialization goes outbound; everything else arrives via webhook.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, secretKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// InitializeResponse is the subset of Paystack's initialization
// response that callers need to redirect the payer.
type InitializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

type initializeBody struct {
	Email    string `json:"email"`
	Amount   int64  `json:"amount"`
	Metadata struct {
		FullName string            `json:"full_name"`
		Cart     []models.CartLine `json:"cart"`
	} `json:"metadata"`
}

// InitializeTransaction starts a payment with Paystack. The cart and
// purchaser name ride along as metadata and come back untouched inside
// the charge.success webhook, which is where fulfillment reads them.
func (c *Client) InitializeTransaction(ctx context.Context, req models.InitializePaymentRequest) (*InitializeResponse, error) {
	body := initializeBody{
		Email:  req.Email,
		Amount: req.Amount,
	}
	body.Metadata.FullName = req.Name
	body.Metadata.Cart = req.Cart

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialization request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/transaction/initialize", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build initialization request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("paystack request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read paystack response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("Paystack initialization rejected",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody),
		)
		return nil, fmt.Errorf("paystack returned status %d", resp.StatusCode)
	}

	var out InitializeResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal paystack response: %w", err)
	}

	c.logger.Info("Payment initialized",
		zap.String("reference", out.Data.Reference),
		zap.String("email", req.Email),
	)

	return &out, nil
}
