package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBody = 1 << 20

// MercadoPagoClient talks to the MercadoPago REST API with one account's
// access token. It implements both PaymentClient and PreferenceClient.
type MercadoPagoClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewMercadoPagoClient(baseURL, accessToken string, timeout time.Duration) *MercadoPagoClient {
	return &MercadoPagoClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *MercadoPagoClient) CreatePayment(ctx context.Context, req PaymentRequest, idempotencyKey string) (*Payment, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["X-Idempotency-Key"] = idempotencyKey
	}
	var p Payment
	raw, err := c.do(ctx, http.MethodPost, "/v1/payments", req, headers, &p)
	if err != nil {
		return nil, err
	}
	p.Raw = raw
	return &p, nil
}

func (c *MercadoPagoClient) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var p Payment
	raw, err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(id), nil, nil, &p)
	if err != nil {
		return nil, err
	}
	p.Raw = raw
	return &p, nil
}

func (c *MercadoPagoClient) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	var p Preference
	if _, err := c.do(ctx, http.MethodPost, "/checkout/preferences", req, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

type apiErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Cause   []struct {
		Code        json.RawMessage `json:"code"`
		Description string          `json:"description"`
	} `json:"cause"`
}

func (c *MercadoPagoClient) do(ctx context.Context, method, path string, body any, headers map[string]string, out any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode gateway request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%s %s: %w", method, path, ErrTimeout)
		}
		return nil, fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeAPIError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("decode gateway response: %w", err)
		}
	}
	return raw, nil
}

func decodeAPIError(status int, raw []byte) error {
	apiErr := &APIError{StatusCode: status, Message: http.StatusText(status)}
	var body apiErrorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			apiErr.Message = body.Message
		} else if body.Error != "" {
			apiErr.Message = body.Error
		}
		if len(body.Cause) > 0 {
			apiErr.Cause = body.Cause[0].Description
		}
	}
	return apiErr
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
