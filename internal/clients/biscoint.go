// Package clients contains exchange API clients.
package clients

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"biscabot/internal/domain"
	"biscabot/pkg/retrier"
)

const (
	defaultBaseURL = "https://api.biscoint.io/v1"
	defaultTimeout = 15 * time.Second

	endpointMeta    = "meta"
	endpointBalance = "balance"
	endpointOffer   = "offer"
	endpointConfirm = "offer/confirm"
	endpointTrades  = "trades"
)

// BiscointConfig credentials and capabilities of one exchange account session.
type BiscointConfig struct {
	APIKey    string
	APISecret string
	// BaseURL overrides the production API host, used in tests.
	BaseURL string
	// CanConfirm marks the session holding confirmation authority.
	// Query-only sessions reject Confirm calls locally.
	CanConfirm bool
	Timeout    time.Duration
}

// BiscointClient is an authenticated session against one Biscoint account.
// Immutable after construction.
type BiscointClient struct {
	cfg        BiscointConfig
	baseURL    string
	httpClient *http.Client
	retrier    *retrier.Retrier
	log        *zap.Logger
	nonce      atomic.Int64
}

// APIError is a non-2xx or application-level error returned by the exchange.
type APIError struct {
	Status    int
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("biscoint api error (status %d, request %s): %s", e.Status, e.RequestID, e.Message)
}

// ErrConfirmNotAllowed is returned when a query-only session attempts a confirmation.
var ErrConfirmNotAllowed = errors.New("session lacks confirmation capability")

// NewBiscointClient creates a session for one account.
func NewBiscointClient(cfg BiscointConfig, log *zap.Logger) *BiscointClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &BiscointClient{
		cfg:        cfg,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		retrier:    retrier.New(retrier.WithMaxRetries(2), retrier.WithInitialInterval(300*time.Millisecond)),
		log:        log,
	}
}

// CanConfirm reports whether this session holds confirmation authority.
func (c *BiscointClient) CanConfirm() bool {
	return c.cfg.CanConfirm
}

type responseEnvelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type metaPayload struct {
	Endpoints struct {
		Offer struct {
			Post struct {
				RateLimit domain.RateLimit `json:"rateLimit"`
			} `json:"post"`
		} `json:"offer"`
	} `json:"endpoints"`
}

type balancePayload struct {
	BRL decimal.Decimal `json:"BRL"`
	BTC decimal.Decimal `json:"BTC"`
}

type offerPayload struct {
	OfferID     string          `json:"offerId"`
	Op          string          `json:"op"`
	EfPrice     decimal.Decimal `json:"efPrice"`
	BaseAmount  decimal.Decimal `json:"baseAmount"`
	QuoteAmount decimal.Decimal `json:"quoteAmount"`
	IsQuote     bool            `json:"isQuote"`
	ExpiresAt   time.Time       `json:"expiresAt"`
}

type confirmPayload struct {
	OfferID   string `json:"offerId"`
	Confirmed bool   `json:"confirmed"`
}

type tradePayload struct {
	ID      string `json:"id"`
	OfferID string `json:"offerId"`
	Op      string `json:"op"`
}

// Meta fetches exchange metadata. Unauthenticated, retried on failure.
func (c *BiscointClient) Meta(ctx context.Context) (domain.ExchangeMeta, error) {
	payload, err := retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) (metaPayload, error) {
		var out metaPayload
		return out, c.request(ctx, http.MethodGet, endpointMeta, nil, &out, false)
	})
	if err != nil {
		return domain.ExchangeMeta{}, errors.Wrap(err, "fetch exchange meta")
	}

	return domain.ExchangeMeta{OfferRateLimit: payload.Endpoints.Offer.Post.RateLimit}, nil
}

// Balance fetches the account holdings. Signed, retried on failure.
func (c *BiscointClient) Balance(ctx context.Context) (domain.BalanceSnapshot, error) {
	payload, err := retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) (balancePayload, error) {
		var out balancePayload
		return out, c.request(ctx, http.MethodPost, endpointBalance, nil, &out, true)
	})
	if err != nil {
		return domain.BalanceSnapshot{}, errors.Wrap(err, "fetch balance")
	}

	return domain.BalanceSnapshot{BRL: payload.BRL, BTC: payload.BTC}, nil
}

// Offer requests a priced quote. Never retried: a stale duplicate quote
// would burn rate-limit budget inside the quote window.
func (c *BiscointClient) Offer(ctx context.Context, req domain.OfferRequest) (domain.Offer, error) {
	params := map[string]any{
		"amount":  req.Amount.String(),
		"isQuote": req.IsQuote,
		"op":      req.Op.String(),
	}

	var out offerPayload
	if err := c.request(ctx, http.MethodPost, endpointOffer, params, &out, true); err != nil {
		return domain.Offer{}, errors.Wrapf(err, "request %s offer", req.Op)
	}

	return domain.Offer{
		ID:             out.OfferID,
		Side:           req.Op,
		EffectivePrice: out.EfPrice,
		BaseAmount:     out.BaseAmount,
		QuoteAmount:    out.QuoteAmount,
		IsQuote:        out.IsQuote,
		ExpiresAt:      out.ExpiresAt,
	}, nil
}

// Confirm executes a previously quoted offer. Never retried: confirmation
// is not idempotent and the exchange rejects duplicate confirms.
func (c *BiscointClient) Confirm(ctx context.Context, offerID string) (domain.Confirmation, error) {
	if !c.cfg.CanConfirm {
		return domain.Confirmation{}, ErrConfirmNotAllowed
	}

	params := map[string]any{"offerId": offerID}

	var out confirmPayload
	if err := c.request(ctx, http.MethodPost, endpointConfirm, params, &out, true); err != nil {
		return domain.Confirmation{}, errors.Wrapf(err, "confirm offer %s", offerID)
	}

	return domain.Confirmation{OfferID: out.OfferID, Confirmed: out.Confirmed}, nil
}

// Trades lists recent account trades of the given operation type.
// Signed, retried on failure.
func (c *BiscointClient) Trades(ctx context.Context, op domain.Side) ([]domain.Trade, error) {
	params := map[string]any{"op": op.String()}

	payload, err := retrier.DoWithData(c.retrier, ctx, func(ctx context.Context) ([]tradePayload, error) {
		var out []tradePayload
		return out, c.request(ctx, http.MethodPost, endpointTrades, params, &out, true)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "list %s trades", op)
	}

	trades := make([]domain.Trade, 0, len(payload))
	for _, t := range payload {
		trades = append(trades, domain.Trade{ID: t.ID, OfferID: t.OfferID, Op: domain.Side(t.Op)})
	}
	return trades, nil
}

// nextNonce returns a strictly increasing nonce in microseconds.
func (c *BiscointClient) nextNonce() int64 {
	for {
		now := time.Now().UnixMicro()
		prev := c.nonce.Load()
		if now <= prev {
			now = prev + 1
		}
		if c.nonce.CompareAndSwap(prev, now) {
			return now
		}
	}
}

// sign computes hex(HMAC-SHA384(secret, base64("v1/<endpoint>" + nonce + body))).
func (c *BiscointClient) sign(endpoint, nonce string, body []byte) string {
	payload := base64.StdEncoding.EncodeToString(append([]byte("v1/"+endpoint+nonce), body...))
	mac := hmac.New(sha512.New384, []byte(c.cfg.APISecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *BiscointClient) request(ctx context.Context, method, endpoint string, params any, out any, signed bool) error {
	body := []byte("{}")
	if params != nil {
		var err error
		if body, err = json.Marshal(params); err != nil {
			return errors.Wrap(err, "marshal request body")
		}
	}

	var reader io.Reader
	if method != http.MethodGet {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	if signed {
		nonce := strconv.FormatInt(c.nextNonce(), 10)
		req.Header.Set("BSCNT-APIKEY", c.cfg.APIKey)
		req.Header.Set("BSCNT-NONCE", nonce)
		req.Header.Set("BSCNT-SIGN", c.sign(endpoint, nonce, body))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("exchange request failed",
			zap.String("endpoint", endpoint),
			zap.String("request_id", requestID),
			zap.Error(err))
		return errors.Wrapf(err, "call %s", endpoint)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read %s response", endpoint)
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return errors.Wrapf(err, "decode %s response", endpoint)
	}

	if resp.StatusCode != http.StatusOK || envelope.Message != "" {
		return &APIError{Status: resp.StatusCode, Message: envelope.Message, RequestID: requestID}
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return errors.Wrapf(err, "decode %s payload", endpoint)
		}
	}
	return nil
}
