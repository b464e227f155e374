// Package paymentprovider — HTTP-клиент внешнего платёжного сервиса,
// инициирующего оплату лицензии.
package paymentprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrUnexpectedStatus возвращается при не-2xx ответе платёжного сервиса.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client обращается к платёжному сервису от имени одной лицензии каталога.
type Client struct {
	apiURL     string
	licenceID  string
	httpClient *http.Client
}

// NewClient создаёт клиент платёжного сервиса.
func NewClient(baseURL, licenceID string, timeout time.Duration) *Client {
	return &Client{
		apiURL:     strings.TrimRight(baseURL, "/") + "/api/v0",
		licenceID:  licenceID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// InitiatePayment создаёт платёж и возвращает ссылку на оплату.
func (c *Client) InitiatePayment(ctx context.Context, reqParams InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	const op = "paymentprovider.InitiatePayment"

	path := "/licence/" + url.PathEscape(c.licenceID) + "/payment/initiate"
	req, err := c.newRequest(ctx, http.MethodPost, path, reqParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnexpectedStatus, resp.Status)
	}

	var paymentResp InitiatePaymentResponse
	if err := json.NewDecoder(resp.Body).Decode(&paymentResp); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &paymentResp, nil
}
