package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrPaymentNotCompleted is returned when a payment intent is verified
// before Stripe reports it succeeded.
var ErrPaymentNotCompleted = errors.New("payment has not been completed")

// PaymentIntent is the subset of Stripe's payment intent object we use.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// PaymentService talks to the Stripe API for subscription payments.
type PaymentService struct {
	secretKey string
	apiURL    string
	client    *http.Client
}

func NewPaymentService() (*PaymentService, error) {
	key, err := readAPIKey("STRIPE_SECRET_KEY")
	if err != nil {
		return nil, fmt.Errorf("stripe secret key not configured: %w", err)
	}
	return &PaymentService{
		secretKey: key,
		apiURL:    getEnv("STRIPE_API_URL", "https://api.stripe.com/v1"),
		client:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// CreatePaymentIntent creates an intent for the given amount in the smallest
// currency unit (cents) and returns it with the client secret the frontend
// needs to confirm the payment. Metadata is attached to the intent so the
// payment can be traced back to the user from the Stripe dashboard.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	return s.do(ctx, http.MethodPost, "/payment_intents", form)
}

// RetrievePaymentIntent fetches the current state of an intent.
func (s *PaymentService) RetrievePaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error) {
	return s.do(ctx, http.MethodGet, "/payment_intents/"+url.PathEscape(intentID), nil)
}

// VerifyPayment confirms that an intent has succeeded. It returns
// ErrPaymentNotCompleted when Stripe reports any other status.
func (s *PaymentService) VerifyPayment(ctx context.Context, intentID string) (*PaymentIntent, error) {
	intent, err := s.RetrievePaymentIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if intent.Status != "succeeded" {
		return intent, ErrPaymentNotCompleted
	}
	return intent, nil
}

func (s *PaymentService) do(ctx context.Context, method, path string, form url.Values) (*PaymentIntent, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, s.apiURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read stripe response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var se stripeError
		if err := json.Unmarshal(data, &se); err == nil && se.Error.Message != "" {
			return nil, fmt.Errorf("stripe error: %s", se.Error.Message)
		}
		return nil, fmt.Errorf("stripe returned status %d", resp.StatusCode)
	}

	var intent PaymentIntent
	if err := json.Unmarshal(data, &intent); err != nil {
		return nil, fmt.Errorf("failed to parse stripe response: %w", err)
	}
	return &intent, nil
}
