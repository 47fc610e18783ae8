package clients

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biscabot/internal/domain"
)

const (
	testAPIKey    = "test-key"
	testAPISecret = "test-secret"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, canConfirm bool) *BiscointClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewBiscointClient(BiscointConfig{
		APIKey:     testAPIKey,
		APISecret:  testAPISecret,
		BaseURL:    srv.URL,
		CanConfirm: canConfirm,
	}, zap.NewNop())
}

func writeData(t *testing.T, w http.ResponseWriter, data string) {
	t.Helper()
	_, _ = w.Write([]byte(`{"message":"","data":` + data + `}`))
}

func expectedSignature(endpoint, nonce string, body []byte) string {
	payload := base64.StdEncoding.EncodeToString(append([]byte("v1/"+endpoint+nonce), body...))
	mac := hmac.New(sha512.New384, []byte(testAPISecret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestBiscointClient_Meta(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/meta", r.URL.Path)
		assert.Empty(t, r.Header.Get("BSCNT-SIGN"), "meta is unauthenticated")
		writeData(t, w, `{"endpoints":{"offer":{"post":{"rateLimit":{"windowMs":1000,"maxRequests":10}}}}}`)
	}, false)

	meta, err := client.Meta(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.RateLimit{WindowMs: 1000, MaxRequests: 10}, meta.OfferRateLimit)
}

func TestBiscointClient_Balance_Signed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/balance", r.URL.Path)
		assert.Equal(t, testAPIKey, r.Header.Get("BSCNT-APIKEY"))

		nonce := r.Header.Get("BSCNT-NONCE")
		require.NotEmpty(t, nonce)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, expectedSignature("balance", nonce, body), r.Header.Get("BSCNT-SIGN"))

		writeData(t, w, `{"BRL":"1250.75","BTC":"0.0051"}`)
	}, false)

	snapshot, err := client.Balance(context.Background())
	require.NoError(t, err)
	assert.True(t, snapshot.BRL.Equal(decimal.RequireFromString("1250.75")))
	assert.True(t, snapshot.BTC.Equal(decimal.RequireFromString("0.0051")))
}

func TestBiscointClient_Offer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/offer", r.URL.Path)

		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "1000", params["amount"])
		assert.Equal(t, true, params["isQuote"])
		assert.Equal(t, "buy", params["op"])

		writeData(t, w, `{"offerId":"of-1","op":"buy","efPrice":"242018.40","baseAmount":"0.00413192","quoteAmount":"1000.00","isQuote":true,"expiresAt":"2026-08-31T12:00:15Z"}`)
	}, false)

	offer, err := client.Offer(context.Background(), domain.OfferRequest{
		Amount:  decimal.NewFromInt(1000),
		IsQuote: true,
		Op:      domain.SideBuy,
	})
	require.NoError(t, err)
	assert.Equal(t, "of-1", offer.ID)
	assert.Equal(t, domain.SideBuy, offer.Side)
	assert.True(t, offer.EffectivePrice.Equal(decimal.RequireFromString("242018.40")))
	assert.True(t, offer.IsQuote)
	assert.False(t, offer.ExpiresAt.IsZero())
}

func TestBiscointClient_Confirm_CapabilityGuard(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, false)

	_, err := client.Confirm(context.Background(), "of-1")
	require.ErrorIs(t, err, ErrConfirmNotAllowed)
	assert.False(t, called, "query-only session must not reach the exchange")
}

func TestBiscointClient_Confirm(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/offer/confirm", r.URL.Path)
		writeData(t, w, `{"offerId":"of-1","confirmed":true}`)
	}, true)

	confirmation, err := client.Confirm(context.Background(), "of-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Confirmation{OfferID: "of-1", Confirmed: true}, confirmation)
}

func TestBiscointClient_Trades(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/trades", r.URL.Path)

		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "sell", params["op"])

		writeData(t, w, `[{"id":"t1","offerId":"of-9","op":"sell"},{"id":"t2","offerId":"of-10","op":"sell"}]`)
	}, false)

	trades, err := client.Trades(context.Background(), domain.SideSell)
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, domain.Trade{ID: "t1", OfferID: "of-9", Op: domain.SideSell}, trades[0])
}

func TestBiscointClient_APIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Insufficient funds","data":null}`))
	}, false)

	_, err := client.Offer(context.Background(), domain.OfferRequest{
		Amount: decimal.NewFromInt(1000), IsQuote: true, Op: domain.SideBuy,
	})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Insufficient funds", apiErr.Message)
}

func TestBiscointClient_NonceStrictlyIncreasing(t *testing.T) {
	var nonces []int64
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.ParseInt(r.Header.Get("BSCNT-NONCE"), 10, 64)
		require.NoError(t, err)
		nonces = append(nonces, n)
		writeData(t, w, `{"BRL":"0","BTC":"0"}`)
	}, false)

	for i := 0; i < 5; i++ {
		_, err := client.Balance(context.Background())
		require.NoError(t, err)
	}

	require.Len(t, nonces, 5)
	for i := 1; i < len(nonces); i++ {
		assert.Greater(t, nonces[i], nonces[i-1])
	}
}
