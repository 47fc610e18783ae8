package offerer

import (
	"context"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"biscabot/internal/domain"
	exchangeMock "biscabot/mocks/exchange"
)

func offerRequestMatcher(op domain.Side, amount string, isQuote bool) interface{} {
	return mock.MatchedBy(func(req domain.OfferRequest) bool {
		return req.Op == op && req.IsQuote == isQuote && req.Amount.Equal(decimal.RequireFromString(amount))
	})
}

func TestEngine_RequestOffers(t *testing.T) {
	buy := exchangeMock.NewExchangeAPI(t)
	sell := exchangeMock.NewExchangeAPI(t)

	buy.On("Offer", mock.Anything, offerRequestMatcher(domain.SideBuy, "1000", true)).
		Return(domain.Offer{ID: "b1", Side: domain.SideBuy, EffectivePrice: decimal.RequireFromString("242000")}, nil)
	sell.On("Offer", mock.Anything, offerRequestMatcher(domain.SideSell, "1000", true)).
		Return(domain.Offer{ID: "s1", Side: domain.SideSell, EffectivePrice: decimal.RequireFromString("242484")}, nil)

	engine := NewEngine(buy, sell, zap.NewNop())

	quotes, err := engine.RequestOffers(context.Background(), decimal.NewFromInt(1000), true)
	require.NoError(t, err)
	assert.Equal(t, "b1", quotes.Buy.ID)
	assert.Equal(t, "s1", quotes.Sell.ID)
	assert.InDelta(t, 0.2, quotes.Profit, 1e-9)
}

func TestEngine_RequestOffers_BTCSizing(t *testing.T) {
	buy := exchangeMock.NewExchangeAPI(t)
	sell := exchangeMock.NewExchangeAPI(t)

	buy.On("Offer", mock.Anything, offerRequestMatcher(domain.SideBuy, "0.01", false)).
		Return(domain.Offer{ID: "b2", EffectivePrice: decimal.RequireFromString("250000")}, nil)
	sell.On("Offer", mock.Anything, offerRequestMatcher(domain.SideSell, "0.01", false)).
		Return(domain.Offer{ID: "s2", EffectivePrice: decimal.RequireFromString("249000")}, nil)

	engine := NewEngine(buy, sell, zap.NewNop())

	quotes, err := engine.RequestOffers(context.Background(), decimal.RequireFromString("0.01"), false)
	require.NoError(t, err)
	assert.Less(t, quotes.Profit, 0.0)
}

func TestEngine_RequestOffers_AtomicOnFailure(t *testing.T) {
	buy := exchangeMock.NewExchangeAPI(t)
	sell := exchangeMock.NewExchangeAPI(t)

	buy.On("Offer", mock.Anything, mock.Anything).
		Return(domain.Offer{ID: "b3", EffectivePrice: decimal.RequireFromString("242000")}, nil).Maybe()
	sell.On("Offer", mock.Anything, mock.Anything).
		Return(domain.Offer{}, errors.New("offer endpoint unavailable"))

	engine := NewEngine(buy, sell, zap.NewNop())

	quotes, err := engine.RequestOffers(context.Background(), decimal.NewFromInt(1000), true)
	require.Error(t, err)

	// No partial result leaks out of a failed invocation.
	assert.Empty(t, quotes.Buy.ID)
	assert.Empty(t, quotes.Sell.ID)
	assert.Zero(t, quotes.Profit)
}

func TestEngine_RequestOffers_ZeroBuyPrice(t *testing.T) {
	buy := exchangeMock.NewExchangeAPI(t)
	sell := exchangeMock.NewExchangeAPI(t)

	buy.On("Offer", mock.Anything, mock.Anything).
		Return(domain.Offer{ID: "b4", EffectivePrice: decimal.Zero}, nil)
	sell.On("Offer", mock.Anything, mock.Anything).
		Return(domain.Offer{ID: "s4", EffectivePrice: decimal.RequireFromString("242000")}, nil)

	engine := NewEngine(buy, sell, zap.NewNop())

	quotes, err := engine.RequestOffers(context.Background(), decimal.NewFromInt(1000), true)
	require.NoError(t, err)

	// Degenerate prices surface as non-finite profit, not a crash.
	assert.True(t, math.IsInf(quotes.Profit, 1))
}
