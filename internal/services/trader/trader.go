// Package trader executes both legs of a quoted arbitrage trade and
// resolves partial executions.
package trader

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"biscabot/internal/domain"
)

type confirmClient interface {
	CanConfirm() bool
	Confirm(ctx context.Context, offerID string) (domain.Confirmation, error)
	Trades(ctx context.Context, op domain.Side) ([]domain.Trade, error)
}

// Result classifies a finished trade attempt.
type Result int

const (
	// ResultProfit both legs confirmed.
	ResultProfit Result = iota
	// ResultRecovered the second confirmation call failed but the trade
	// history shows the leg executed.
	ResultRecovered
	// ResultPartial only the first leg executed. The caller must flip the
	// base side so the next cycle sizes from the currency actually held.
	ResultPartial
)

// Outcome of a trade attempt.
type Outcome struct {
	Result Result
	// FlipBase instructs the cycle driver to toggle the sizing currency.
	FlipBase bool
	Elapsed  time.Duration
}

// Executor confirms trade legs through the session holding confirmation
// authority. Both legs go through the same session.
type Executor struct {
	session confirmClient
	log     *zap.Logger
}

// NewExecutor creates an executor. The session must hold confirmation
// authority; query-only sessions are rejected at construction.
func NewExecutor(session confirmClient, log *zap.Logger) (*Executor, error) {
	if !session.CanConfirm() {
		return nil, errors.New("executor requires a session with confirmation capability")
	}
	return &Executor{session: session, log: log}, nil
}

// Execute confirms both offers sequentially. The first leg is the offer
// matching the current base side. Confirmations are never issued
// concurrently: the exchange rejects simultaneous confirms on one account.
//
// An error return means no position was taken (first leg failed) or the
// position is unresolved (recovery lookup failed). A nil error with
// Outcome.FlipBase set means a detected partial fill.
func (e *Executor) Execute(ctx context.Context, buyOffer, sellOffer domain.Offer, isBRL bool) (Outcome, error) {
	first, second := sellOffer, buyOffer
	if isBRL {
		first, second = buyOffer, sellOffer
	}

	startedAt := time.Now()

	firstLeg, err := e.session.Confirm(ctx, first.ID)
	if err != nil {
		return Outcome{}, errors.Wrapf(err, "first leg (%s) failed, no position taken", first.Side)
	}
	if !firstLeg.Confirmed {
		return Outcome{}, errors.Errorf("first leg (%s) rejected for offer %s, no position taken", first.Side, first.ID)
	}

	secondLeg, err := e.session.Confirm(ctx, second.ID)
	if err == nil && secondLeg.Confirmed {
		elapsed := time.Since(startedAt)
		e.log.Info("trade executed",
			zap.String("buy_offer", buyOffer.ID),
			zap.String("sell_offer", sellOffer.ID),
			zap.Duration("elapsed", elapsed))
		return Outcome{Result: ResultProfit, Elapsed: elapsed}, nil
	}

	if err != nil {
		e.log.Warn("second leg confirmation failed, checking trade history",
			zap.String("offer", second.ID), zap.Error(err))
	} else {
		e.log.Warn("second leg rejected, checking trade history", zap.String("offer", second.ID))
	}

	return e.recoverSecondLeg(ctx, second, time.Since(startedAt))
}

// recoverSecondLeg determines ground truth after an unconfirmed second leg
// by searching the trade history for the offer among trades of the expected
// operation type.
func (e *Executor) recoverSecondLeg(ctx context.Context, second domain.Offer, elapsed time.Duration) (Outcome, error) {
	trades, err := e.session.Trades(ctx, second.Side)
	if err != nil {
		return Outcome{}, errors.Wrapf(err, "second leg of offer %s unresolved: trade history lookup failed", second.ID)
	}

	for _, t := range trades {
		if t.OfferID == second.ID {
			e.log.Info("second leg executed despite failed confirmation", zap.String("offer", second.ID))
			return Outcome{Result: ResultRecovered, Elapsed: elapsed}, nil
		}
	}

	e.log.Warn("only the first leg executed, switching base side", zap.String("offer", second.ID))
	return Outcome{Result: ResultPartial, FlipBase: true, Elapsed: elapsed}, nil
}
