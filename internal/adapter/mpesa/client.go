package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eventtribe/ticketing/internal/core/ports"
	"github.com/eventtribe/ticketing/internal/platform/metrics"
)

const (
	tokenPath     = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath   = "/mpesa/stkpush/v1/processrequest"
	stkQueryPath  = "/mpesa/stkpushquery/v1/query"
	timestampFmt  = "20060102150405"
	payBillOnline = "CustomerPayBillOnline"

	// resultCodeProcessing is returned by the query endpoint before the payer answers.
	resultCodeProcessing = 4999
)

// Daraja timestamps are East Africa Time.
var eat = time.FixedZone("EAT", 3*60*60)

type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	CallbackURL    string
	Timeout        time.Duration
}

// Client talks to the Safaricom Daraja API. Access tokens are shared through
// Redis so every replica reuses the same token until shortly before expiry.
type Client struct {
	cfg        Config
	httpClient *http.Client
	rdb        redis.Cmdable
	log        *zap.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

var _ ports.PaymentGateway = (*Client)(nil)

type Option func(*Client)

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(cfg Config, rdb redis.Cmdable, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		rdb:        rdb,
		log:        zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.metrics == nil {
		c.metrics = metrics.NewNop()
	}
	return c
}

type stkPushRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	TransactionType   string `json:"TransactionType"`
	Amount            int64  `json:"Amount"`
	PartyA            string `json:"PartyA"`
	PartyB            string `json:"PartyB"`
	PhoneNumber       string `json:"PhoneNumber"`
	CallBackURL       string `json:"CallBackURL"`
	AccountReference  string `json:"AccountReference"`
	TransactionDesc   string `json:"TransactionDesc"`
}

type stkPushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`
}

type stkQueryRequest struct {
	BusinessShortCode string `json:"BusinessShortCode"`
	Password          string `json:"Password"`
	Timestamp         string `json:"Timestamp"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
}

type stkQueryResponse struct {
	ResponseCode        string     `json:"ResponseCode"`
	ResponseDescription string     `json:"ResponseDescription"`
	ResultCode          resultCode `json:"ResultCode"`
	ResultDesc          string     `json:"ResultDesc"`
}

type errorResponse struct {
	RequestID    string `json:"requestId"`
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

func (c *Client) InitiateSTKPush(ctx context.Context, req ports.STKPushRequest) (*ports.STKPushResponse, error) {
	defer c.metrics.ObserveProvider("stk_push", time.Now())

	timestamp, password := c.credentials()
	body := stkPushRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   payBillOnline,
		Amount:            req.Amount,
		PartyA:            req.PhoneNumber,
		PartyB:            c.cfg.ShortCode,
		PhoneNumber:       req.PhoneNumber,
		CallBackURL:       c.cfg.CallbackURL,
		AccountReference:  req.BookingID,
		TransactionDesc:   req.Description,
	}

	var resp stkPushResponse
	if err := c.doAuthorized(ctx, stkPushPath, body, &resp); err != nil {
		return nil, err
	}

	c.log.Info("STK Push submitted",
		zap.String("booking_id", req.BookingID),
		zap.String("checkout_request_id", resp.CheckoutRequestID),
		zap.String("response_code", resp.ResponseCode),
	)

	return &ports.STKPushResponse{
		MerchantRequestID:   resp.MerchantRequestID,
		CheckoutRequestID:   resp.CheckoutRequestID,
		ResponseCode:        resp.ResponseCode,
		ResponseDescription: resp.ResponseDescription,
		CustomerMessage:     resp.CustomerMessage,
	}, nil
}

func (c *Client) QuerySTKPush(ctx context.Context, checkoutRequestID string) (*ports.STKQueryResult, error) {
	defer c.metrics.ObserveProvider("stk_query", time.Now())

	timestamp, password := c.credentials()
	body := stkQueryRequest{
		BusinessShortCode: c.cfg.ShortCode,
		Password:          password,
		Timestamp:         timestamp,
		CheckoutRequestID: checkoutRequestID,
	}

	var resp stkQueryResponse
	if err := c.doAuthorized(ctx, stkQueryPath, body, &resp); err != nil {
		return nil, err
	}

	// Anything short of an accepted query with a result code says nothing
	// about the payment; the caller retries later.
	if resp.ResponseCode != "0" {
		return nil, &ports.ProviderError{
			StatusCode:  http.StatusOK,
			Code:        resp.ResponseCode,
			Description: resp.ResponseDescription,
		}
	}
	if !resp.ResultCode.set {
		return nil, &ports.ProviderError{
			StatusCode:  http.StatusOK,
			Description: "status query returned no result code",
		}
	}

	if resp.ResultCode.value == resultCodeProcessing {
		return nil, &ports.ProviderError{
			StatusCode:  http.StatusOK,
			Code:        ports.ErrPaymentStillProcessing.Code,
			Description: resp.ResultDesc,
		}
	}

	return &ports.STKQueryResult{ResultCode: resp.ResultCode.value, ResultDesc: resp.ResultDesc}, nil
}

// credentials returns the request timestamp and the matching password,
// base64(shortcode + passkey + timestamp).
func (c *Client) credentials() (string, string) {
	timestamp := c.now().In(eat).Format(timestampFmt)
	password := base64.StdEncoding.EncodeToString([]byte(c.cfg.ShortCode + c.cfg.Passkey + timestamp))
	return timestamp, password
}

func (c *Client) doAuthorized(ctx context.Context, path string, body any, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	err = c.do(req, out)

	var perr *ports.ProviderError
	if errors.As(err, &perr) && perr.StatusCode == http.StatusUnauthorized {
		c.invalidateToken(ctx)
	}

	return err
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mpesa %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		perr := &ports.ProviderError{StatusCode: resp.StatusCode, Description: http.StatusText(resp.StatusCode)}

		var e errorResponse
		if json.Unmarshal(respBytes, &e) == nil && e.ErrorCode != "" {
			perr.Code = e.ErrorCode
			perr.Description = e.ErrorMessage
		}
		return perr
	}

	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// resultCode accepts both 1032 and "1032"; Daraja is not consistent between
// endpoints. An absent, null or empty code leaves set false.
type resultCode struct {
	value int
	set   bool
}

func (r *resultCode) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*r = resultCode{}
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid result code %q", s)
	}
	*r = resultCode{value: n, set: true}
	return nil
}
