package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	errors "github.com/msaada/donation-platform/internal"
)

const (
	oauthPath   = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	transactionType = "CustomerPayBillOnline"

	// refresh slightly before the provider-declared expiry so an in-flight
	// push never carries a token that dies mid-request
	tokenExpiryMargin = 30 * time.Second
)

type Config struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	Passkey        string
	ShortCode      string
	CallbackURL    string
	PushTimeout    time.Duration
}

// Client talks to the Daraja API. It owns a cached bearer token refreshed
// lazily on use; concurrent callers hitting an expired token may each fetch
// a fresh one, which is tolerated rather than serialized behind a lock.
type Client struct {
	baseURL        string
	consumerKey    string
	consumerSecret string
	passkey        string
	shortCode      string
	callbackURL    string
	pushTimeout    time.Duration

	httpClient *http.Client
	logger     *slog.Logger

	mu          sync.RWMutex
	accessToken string
	tokenExpiry time.Time

	now func() time.Time
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.PushTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		passkey:        cfg.Passkey,
		shortCode:      cfg.ShortCode,
		callbackURL:    cfg.CallbackURL,
		pushTimeout:    timeout,
		httpClient:     &http.Client{Timeout: timeout},
		logger:         logger,
		now:            time.Now,
	}
}

// GetAccessToken returns the cached bearer token, fetching a new one from
// the provider token endpoint when the cache is empty or expired.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	token, expiry := c.accessToken, c.tokenExpiry
	c.mu.RUnlock()

	if token != "" && c.now().Before(expiry) {
		return token, nil
	}

	return c.fetchAccessToken(ctx)
}

func (c *Client) fetchAccessToken(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.pushTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+oauthPath, nil)
	if err != nil {
		return "", errors.NewExternalError("failed to build token request", errors.ErrCodeGatewayUnavailable, err)
	}

	auth := base64.StdEncoding.EncodeToString([]byte(c.consumerKey + ":" + c.consumerSecret))
	req.Header.Set("Authorization", "Basic "+auth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("mpesa: token request failed", "error", err)
		return "", errors.NewExternalError("failed to get access token", errors.ErrCodeGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("mpesa: token endpoint returned error",
			"status", resp.StatusCode,
			"response", string(body))
		return "", errors.NewExternalError(
			fmt.Sprintf("token endpoint returned status %d", resp.StatusCode),
			errors.ErrCodeGatewayUnavailable, nil)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", errors.NewExternalError("failed to decode token response", errors.ErrCodeGatewayUnavailable, err)
	}

	expiresIn, err := tokenResp.ExpiresIn.Int64()
	if err != nil || expiresIn <= 0 {
		expiresIn = 3599
	}

	expiry := c.now().Add(time.Duration(expiresIn)*time.Second - tokenExpiryMargin)

	c.mu.Lock()
	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = expiry
	c.mu.Unlock()

	c.logger.Info("mpesa: access token refreshed", "expires_in_seconds", expiresIn)

	return tokenResp.AccessToken, nil
}

// InitiateSTKPush submits a payment push for the given request. A nil error
// only means the provider accepted the push for processing; the payment
// outcome arrives later on the callback URL.
func (c *Client) InitiateSTKPush(ctx context.Context, pushReq *STKPushRequest) (*STKPushResponse, error) {
	token, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := c.now().Format("20060102150405")
	password := base64.StdEncoding.EncodeToString([]byte(c.shortCode + c.passkey + timestamp))

	payload := stkPushPayload{
		BusinessShortCode: c.shortCode,
		Password:          password,
		Timestamp:         timestamp,
		TransactionType:   transactionType,
		Amount:            pushReq.Amount,
		PartyA:            pushReq.PhoneNumber,
		PartyB:            c.shortCode,
		PhoneNumber:       pushReq.PhoneNumber,
		CallBackURL:       c.callbackURL,
		AccountReference:  pushReq.AccountReference,
		TransactionDesc:   pushReq.TransactionDesc,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewInternalError("failed to marshal push payload", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.pushTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+stkPushPath, bytes.NewBuffer(body))
	if err != nil {
		return nil, errors.NewExternalError("failed to build push request", errors.ErrCodeGatewayUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("mpesa: initiating stk push",
		"phone_number", pushReq.PhoneNumber,
		"amount", pushReq.Amount,
		"account_reference", pushReq.AccountReference)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("mpesa: stk push request failed", "error", err, "account_reference", pushReq.AccountReference)
		return nil, errors.NewExternalError("failed to initiate payment", errors.ErrCodeGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewExternalError("failed to read push response", errors.ErrCodeGatewayUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("mpesa: stk push returned error",
			"status", resp.StatusCode,
			"response", string(respBody),
			"account_reference", pushReq.AccountReference)
		return nil, errors.NewExternalError(
			fmt.Sprintf("push endpoint returned status %d", resp.StatusCode),
			errors.ErrCodeGatewayUnavailable, nil)
	}

	var pushResp STKPushResponse
	if err := json.Unmarshal(respBody, &pushResp); err != nil {
		return nil, errors.NewExternalError("failed to decode push response", errors.ErrCodeGatewayUnavailable, err)
	}

	if pushResp.ResponseCode != "0" {
		c.logger.Error("mpesa: stk push rejected",
			"response_code", pushResp.ResponseCode,
			"response_description", pushResp.ResponseDescription,
			"account_reference", pushReq.AccountReference)
		return nil, errors.NewExternalError(
			fmt.Sprintf("push rejected: %s", pushResp.ResponseDescription),
			errors.ErrCodeGatewayRejected, nil)
	}

	c.logger.Info("mpesa: stk push accepted",
		"merchant_request_id", pushResp.MerchantRequestID,
		"checkout_request_id", pushResp.CheckoutRequestID,
		"account_reference", pushReq.AccountReference)

	return &pushResp, nil
}
