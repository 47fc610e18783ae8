package wallet

import (
	"context"
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

func TestTracker_Refresh_SizingDecision(t *testing.T) {
	tests := []struct {
		name    string
		brl     string
		wantBRL bool
	}{
		{name: "at threshold sizes in BRL", brl: "100", wantBRL: true},
		{name: "above threshold sizes in BRL", brl: "5000.50", wantBRL: true},
		{name: "just below threshold sizes in BTC", brl: "99.99", wantBRL: false},
		{name: "empty BRL balance sizes in BTC", brl: "0", wantBRL: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := exchangeMock.NewExchangeAPI(t)
			client.On("Balance", mock.Anything).Return(domain.BalanceSnapshot{
				BRL: decimal.RequireFromString(tt.brl),
				BTC: decimal.RequireFromString("0.05"),
			}, nil)

			tracker := NewTracker(client, zap.NewNop())

			snapshot, isBRL, err := tracker.Refresh(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantBRL, isBRL)
			assert.True(t, snapshot.BRL.Equal(decimal.RequireFromString(tt.brl)))
		})
	}
}

func TestTracker_Refresh_Failure(t *testing.T) {
	client := exchangeMock.NewExchangeAPI(t)
	client.On("Balance", mock.Anything).Return(domain.BalanceSnapshot{}, errors.New("auth failed"))

	tracker := NewTracker(client, zap.NewNop())

	_, _, err := tracker.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh balances")
}
