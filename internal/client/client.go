// Package client is a typed consumer of the cash & bank REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/bizledger/cashbank/internal/models"
)

const apiPrefix = "/api/v1/cash-bank"

type Client struct {
	baseURL    string
	auth       AuthProvider
	httpClient *http.Client
	newKey     func() string
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithIdempotencyKeys overrides how keys are generated for mutations.
func WithIdempotencyKeys(fn func() string) Option {
	return func(cl *Client) { cl.newKey = fn }
}

func New(baseURL string, auth AuthProvider, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		auth:       auth,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		newKey:     func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TransactionQuery narrows ListTransactions. Zero values are omitted.
type TransactionQuery struct {
	Start     *models.Date
	End       *models.Date
	AccountID int64
	Limit     int
}

// DashboardQuery selects the dashboard period: either a named range or
// custom bounds.
type DashboardQuery struct {
	Range string
	Start *models.Date
	End   *models.Date
}

type TransactionList struct {
	Transactions []models.LedgerTransaction `json:"transactions"`
	Count        int                        `json:"count"`
}

func (c *Client) ListAccounts(ctx context.Context) (*models.AccountList, error) {
	var out models.AccountList
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/accounts", nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	var out models.Account
	path := apiPrefix + "/accounts/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateBankAccount(ctx context.Context, req models.CreateBankAccountRequest) (*models.Account, error) {
	var out models.Account
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/accounts", req, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyAccount(ctx context.Context, id int64) (*models.IntegrityReport, error) {
	var out models.IntegrityReport
	path := apiPrefix + "/accounts/" + strconv.FormatInt(id, 10) + "/verify"
	if err := c.do(ctx, http.MethodGet, path, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Adjust records a balance adjustment. Each call sends a fresh
// Idempotency-Key unless one is given.
func (c *Client) Adjust(ctx context.Context, req models.AdjustmentRequest, idempotencyKey string) (*models.AdjustmentResult, error) {
	if idempotencyKey == "" {
		idempotencyKey = c.newKey()
	}
	var out models.AdjustmentResult
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/adjustments", req, idempotencyKey, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Transfer(ctx context.Context, req models.TransferRequest, idempotencyKey string) (*models.TransferResult, error) {
	if idempotencyKey == "" {
		idempotencyKey = c.newKey()
	}
	var out models.TransferResult
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/transfers", req, idempotencyKey, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Dashboard(ctx context.Context, q DashboardQuery) (*models.DashboardSummary, error) {
	params := url.Values{}
	if q.Range != "" {
		params.Set("range", q.Range)
	}
	setDate(params, "start_date", q.Start)
	setDate(params, "end_date", q.End)

	var out models.DashboardSummary
	if err := c.do(ctx, http.MethodGet, withQuery(apiPrefix+"/transactions/dashboard", params), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTransactions(ctx context.Context, q TransactionQuery) (*TransactionList, error) {
	params := url.Values{}
	setDate(params, "start_date", q.Start)
	setDate(params, "end_date", q.End)
	if q.AccountID > 0 {
		params.Set("account", strconv.FormatInt(q.AccountID, 10))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	var out TransactionList
	if err := c.do(ctx, http.MethodGet, withQuery(apiPrefix+"/transactions", params), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UPIQR fetches the PNG QR code for a bank account. A zero amount leaves
// the amount to the payer.
func (c *Client) UPIQR(ctx context.Context, id int64, amount decimal.Decimal) ([]byte, error) {
	params := url.Values{}
	if amount.IsPositive() {
		params.Set("amount", amount.StringFixed(2))
	}
	path := withQuery(apiPrefix+"/accounts/"+strconv.FormatInt(id, 10)+"/upi-qr", params)

	res, err := c.send(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &NetworkError{Err: errors.Wrap(err, "Failed to read response")}
	}
	if res.StatusCode >= 300 {
		return nil, decodeFailure(res.StatusCode, body)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, in any, idempotencyKey string, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "Failed to encode request")
		}
		body = bytes.NewReader(payload)
	}

	res, err := c.send(ctx, method, path, body, idempotencyKey)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return &NetworkError{Err: errors.Wrap(err, "Failed to read response")}
	}
	if res.StatusCode >= 300 {
		return decodeFailure(res.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(data, out), "Failed to decode %s %s response", method, path)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, idempotencyKey string) (*http.Response, error) {
	if c.auth == nil {
		return nil, &AuthError{Message: ErrNoToken.Error()}
	}
	token, err := c.auth.Token(ctx)
	if err != nil {
		return nil, &AuthError{Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to build request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: errors.Wrapf(err, "%s %s", method, path)}
	}
	return res, nil
}

type errorBody struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func decodeFailure(status int, data []byte) error {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
		if body.Error == "" {
			body.Error = http.StatusText(status)
		}
	}

	switch status {
	case http.StatusUnauthorized:
		return &AuthError{Message: body.Error}
	case http.StatusBadRequest:
		return &ValidationError{Message: body.Error, Fields: body.Details}
	default:
		return &BackendError{StatusCode: status, Message: body.Error}
	}
}

func setDate(params url.Values, key string, d *models.Date) {
	if d != nil && !d.IsZero() {
		params.Set(key, d.String())
	}
}

func withQuery(path string, params url.Values) string {
	if len(params) == 0 {
		return path
	}
	return path + "?" + params.Encode()
}
