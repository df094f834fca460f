package tinkoff

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://invest-public-api.tinkoff.ru/rest"

	// unary methods are limited per minute on the provider side. 2 rps
	// with a small burst keeps a full run well inside the quota.
	defaultRequestsPerSecond = 2
	defaultBurst             = 5

	contractPrefix = "/tinkoff.public.invest.api.contract.v1."
)

type Client struct {
	HttpClient *http.Client
	BaseURL    string
	Token      string
	Limiter    *rate.Limiter
}

func NewClient(token, baseURL string, requestsPerSecond float64) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = defaultRequestsPerSecond
	}
	return &Client{
		HttpClient: &http.Client{Timeout: 30 * time.Second},
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		Limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), defaultBurst),
	}
}

// APIError is returned for any non-2xx response
type APIError struct {
	StatusCode  int
	Code        int    `json:"code"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tinkoff api returned status %d (code %d): %s %s", e.StatusCode, e.Code, e.Message, e.Description)
}

// Quotation is the provider's fixed point number: units plus billionths
type Quotation struct {
	Units json.Number `json:"units"`
	Nano  int32       `json:"nano"`
}

func (q Quotation) Decimal() (decimal.Decimal, error) {
	units := decimal.Zero
	if q.Units != "" {
		var err error
		units, err = decimal.NewFromString(q.Units.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("failed to parse quotation units %q: %w", q.Units, err)
		}
	}
	return units.Add(decimal.New(int64(q.Nano), -9)), nil
}

type MoneyValue struct {
	Currency string      `json:"currency"`
	Units    json.Number `json:"units"`
	Nano     int32       `json:"nano"`
}

func (m MoneyValue) Decimal() (decimal.Decimal, error) {
	return Quotation{Units: m.Units, Nano: m.Nano}.Decimal()
}

type Account struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

const (
	AccountStatusNew    = "ACCOUNT_STATUS_NEW"
	AccountStatusOpen   = "ACCOUNT_STATUS_OPEN"
	AccountStatusClosed = "ACCOUNT_STATUS_CLOSED"
)

type Instrument struct {
	Figi     string `json:"figi"`
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Lot      int64  `json:"lot"`
	Currency string `json:"currency"`
}

type PortfolioPosition struct {
	Figi           string     `json:"figi"`
	InstrumentType string     `json:"instrumentType"`
	Quantity       Quotation  `json:"quantity"`
	CurrentPrice   MoneyValue `json:"currentPrice"`
}

type PortfolioResponse struct {
	AccountID string              `json:"accountId"`
	Positions []PortfolioPosition `json:"positions"`
}

func (c *Client) post(ctx context.Context, method string, body interface{}, out interface{}) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return fmt.Errorf("failed to wait for rate limiter: %w", err)
		}
	}

	reqBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := c.BaseURL + contractPrefix + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	response, err := c.HttpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", method, err)
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		apiErr := &APIError{StatusCode: response.StatusCode}
		if jsonErr := json.Unmarshal(responseBytes, apiErr); jsonErr != nil {
			apiErr.Message = string(responseBytes)
		}
		return apiErr
	}

	if err := json.Unmarshal(responseBytes, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	return nil
}

func (c *Client) GetAccounts(ctx context.Context) ([]Account, error) {
	var response struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.post(ctx, "UsersService/GetAccounts", struct{}{}, &response); err != nil {
		return nil, err
	}
	return response.Accounts, nil
}

type instrumentsRequest struct {
	InstrumentStatus string `json:"instrumentStatus"`
}

type instrumentsResponse struct {
	Instruments []Instrument `json:"instruments"`
}

func (c *Client) instruments(ctx context.Context, method string) ([]Instrument, error) {
	response := instrumentsResponse{}
	err := c.post(ctx, method, instrumentsRequest{InstrumentStatus: "INSTRUMENT_STATUS_BASE"}, &response)
	if err != nil {
		return nil, err
	}
	return response.Instruments, nil
}

func (c *Client) Shares(ctx context.Context) ([]Instrument, error) {
	return c.instruments(ctx, "InstrumentsService/Shares")
}

func (c *Client) Etfs(ctx context.Context) ([]Instrument, error) {
	return c.instruments(ctx, "InstrumentsService/Etfs")
}

func (c *Client) Currencies(ctx context.Context) ([]Instrument, error) {
	return c.instruments(ctx, "InstrumentsService/Currencies")
}

func (c *Client) GetPortfolio(ctx context.Context, accountID string) (*PortfolioResponse, error) {
	request := struct {
		AccountID string `json:"accountId"`
	}{accountID}

	response := PortfolioResponse{}
	if err := c.post(ctx, "OperationsService/GetPortfolio", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}
