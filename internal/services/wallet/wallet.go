// Package wallet tracks the buy account balance and decides the sizing
// currency for the next cycle.
package wallet

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"biscabot/internal/domain"
)

// brlSizingThreshold below this BRL balance the bot sizes offers in BTC.
var brlSizingThreshold = decimal.NewFromInt(100)

type balanceClient interface {
	Balance(ctx context.Context) (domain.BalanceSnapshot, error)
}

// Tracker queries balances on the buy account. The sell account balance is
// irrelevant to sizing and is never fetched.
type Tracker struct {
	client balanceClient
	log    *zap.Logger
}

// NewTracker creates a balance tracker over the buy account session.
func NewTracker(client balanceClient, log *zap.Logger) *Tracker {
	return &Tracker{client: client, log: log}
}

// Refresh fetches a fresh snapshot and returns it together with the
// base-side decision: true when BRL is the sizing currency.
// On error the caller keeps its previous snapshot and flag untouched.
func (t *Tracker) Refresh(ctx context.Context) (domain.BalanceSnapshot, bool, error) {
	snapshot, err := t.client.Balance(ctx)
	if err != nil {
		return domain.BalanceSnapshot{}, false, errors.Wrap(err, "refresh balances")
	}

	isBRL := snapshot.BRL.GreaterThanOrEqual(brlSizingThreshold)

	t.log.Info("balances refreshed",
		zap.String("brl", snapshot.BRL.String()),
		zap.String("btc", snapshot.BTC.String()),
		zap.Bool("size_in_brl", isBRL))

	return snapshot, isBRL, nil
}
