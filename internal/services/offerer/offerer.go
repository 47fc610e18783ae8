// Package offerer acquires simultaneous buy and sell quotes and computes
// the spread between them.
package offerer

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"biscabot/internal/domain"
)

type quoter interface {
	Offer(ctx context.Context, req domain.OfferRequest) (domain.Offer, error)
}

// Quotes is one matched pair of offers produced by a single RequestOffers
// call. Offers from different calls must never be mixed in a trade.
type Quotes struct {
	Buy     domain.Offer
	Sell    domain.Offer
	Profit  float64
	Elapsed time.Duration
}

// Engine requests both sides of the spread.
type Engine struct {
	buy  quoter
	sell quoter
	log  *zap.Logger
}

// NewEngine creates an offer engine over the buy and sell account sessions.
func NewEngine(buy, sell quoter, log *zap.Logger) *Engine {
	return &Engine{buy: buy, sell: sell, log: log}
}

// RequestOffers quotes the same amount on both accounts concurrently.
// Both requests are in flight before either completes: prices move inside
// the quote window, so sequential fetching would skew the measured spread.
//
// Either both quotes succeed or an error is returned with no partial result.
func (e *Engine) RequestOffers(ctx context.Context, amount decimal.Decimal, isBRL bool) (Quotes, error) {
	var buyOffer, sellOffer domain.Offer

	startedAt := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		buyOffer, err = e.buy.Offer(gctx, domain.OfferRequest{Amount: amount, IsQuote: isBRL, Op: domain.SideBuy})
		return err
	})
	g.Go(func() error {
		var err error
		sellOffer, err = e.sell.Offer(gctx, domain.OfferRequest{Amount: amount, IsQuote: isBRL, Op: domain.SideSell})
		return err
	})
	if err := g.Wait(); err != nil {
		return Quotes{}, errors.Wrap(err, "request offers")
	}

	elapsed := time.Since(startedAt)
	profit := domain.Percent(buyOffer.EffectivePrice.InexactFloat64(), sellOffer.EffectivePrice.InexactFloat64())

	e.log.Info("offers received",
		zap.String("buy_price", buyOffer.EffectivePrice.String()),
		zap.String("sell_price", sellOffer.EffectivePrice.String()),
		zap.Float64("profit_percent", profit),
		zap.Duration("elapsed", elapsed))

	return Quotes{Buy: buyOffer, Sell: sellOffer, Profit: profit, Elapsed: elapsed}, nil
}
