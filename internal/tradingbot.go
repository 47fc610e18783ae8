package internal

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"biscabot/internal/domain"
	"biscabot/internal/journal"
	"biscabot/internal/metrics"
	"biscabot/internal/services/offerer"
	"biscabot/internal/services/pacer"
	"biscabot/internal/services/trader"
)

// minProfitPercent inclusive profitability gate for executing a trade.
const minProfitPercent = 0.01

// probeOfferAmount fixed BRL notional quoted in simulation mode, where no
// real balance drives sizing.
var probeOfferAmount = decimal.RequireFromString("50.00")

type offerEngine interface {
	RequestOffers(ctx context.Context, amount decimal.Decimal, isBRL bool) (offerer.Quotes, error)
}

type tradeExecutor interface {
	Execute(ctx context.Context, buyOffer, sellOffer domain.Offer, isBRL bool) (trader.Outcome, error)
}

type balanceTracker interface {
	Refresh(ctx context.Context) (domain.BalanceSnapshot, bool, error)
}

type metaClient interface {
	Meta(ctx context.Context) (domain.ExchangeMeta, error)
}

// TradingBot drives the trade cycle: quote both sides, evaluate the spread,
// trade when profitable, refresh balances, pace, repeat.
type TradingBot struct {
	offers     offerEngine
	executor   tradeExecutor
	wallet     balanceTracker
	meta       metaClient
	journal    *journal.Journal
	log        *zap.Logger
	simulation bool

	interval time.Duration
	counters domain.Counters
}

// NewTradingBot wires the cycle driver.
func NewTradingBot(offers offerEngine, executor tradeExecutor, wallet balanceTracker, meta metaClient,
	jrnl *journal.Journal, log *zap.Logger, simulation bool) *TradingBot {
	return &TradingBot{
		offers:     offers,
		executor:   executor,
		wallet:     wallet,
		meta:       meta,
		journal:    jrnl,
		log:        log,
		simulation: simulation,
	}
}

// cycleState is the authoritative mutable state of the loop, threaded
// explicitly through each iteration. Exactly one value is live at a time.
type cycleState struct {
	balances domain.BalanceSnapshot
	isBRL    bool
}

// Run executes trade cycles until ctx is cancelled. A failure inside an
// iteration is reported and counted but never terminates the loop: the
// loop is the availability guarantee of the whole system.
func (b *TradingBot) Run(ctx context.Context) error {
	b.setupInterval(ctx)

	state := cycleState{isBRL: true}
	if snapshot, isBRL, err := b.wallet.Refresh(ctx); err != nil {
		b.reportError("initial balance refresh", err)
	} else {
		state = cycleState{balances: snapshot, isBRL: isBRL}
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		startedAt := time.Now()
		b.counters.Cycles++
		metrics.Cycles.Inc()

		next, err := b.runCycle(ctx, state)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.reportError("cycle", err)
		} else {
			state = next
		}

		b.log.Info("cycle finished",
			zap.String("counters", b.counters.String()),
			zap.Duration("elapsed", time.Since(startedAt)))

		if err := b.pause(ctx, time.Since(startedAt)); err != nil {
			return err
		}
	}
}

// setupInterval derives the cycle pacing from the exchange rate-limit
// metadata. Failure is fatal to profitability, not to the process: it is
// reported loudly and the interval stays at zero, leaving the exchange's
// own throttling as the only backstop.
func (b *TradingBot) setupInterval(ctx context.Context) {
	meta, err := b.meta.Meta(ctx)
	if err != nil {
		b.reportError("fetch rate limits", err)
		return
	}

	interval, err := pacer.Interval(meta.OfferRateLimit)
	if err != nil {
		b.reportError("derive cycle interval", err)
		return
	}

	b.interval = interval
	metrics.CycleInterval.Set(interval.Seconds())
	b.log.Info("cycle pacing derived",
		zap.Int("max_requests", meta.OfferRateLimit.MaxRequests),
		zap.Int("window_ms", meta.OfferRateLimit.WindowMs),
		zap.Duration("interval", interval))
}

// runCycle performs one quote/evaluate/trade/refresh pass and returns the
// state for the next iteration.
func (b *TradingBot) runCycle(ctx context.Context, state cycleState) (cycleState, error) {
	amount := state.balances.Amount(state.isBRL)
	if b.simulation {
		amount = probeOfferAmount
	}

	quotes, err := b.offers.RequestOffers(ctx, amount, state.isBRL)
	if err != nil {
		return state, errors.Wrap(err, "request offers")
	}

	if !isFinite(quotes.Profit) {
		b.log.Warn("degenerate quote prices produced a non-finite spread, skipping trade",
			zap.Float64("profit_percent", quotes.Profit))
		return state, nil
	}
	metrics.SpreadPercent.Set(quotes.Profit)

	if b.simulation || quotes.Profit < minProfitPercent {
		return state, nil
	}

	outcome, err := b.executor.Execute(ctx, quotes.Buy, quotes.Sell, state.isBRL)
	if err != nil {
		return state, errors.Wrap(err, "execute trade")
	}

	switch outcome.Result {
	case trader.ResultProfit, trader.ResultRecovered:
		b.counters.Profit++
		metrics.ProfitTrades.Inc()
		b.log.Info("profitable trade",
			zap.String("counters", b.counters.String()),
			zap.Float64("profit_percent", quotes.Profit),
			zap.Duration("elapsed", outcome.Elapsed))
	case trader.ResultPartial:
		b.counters.Lose++
		metrics.LoseTrades.Inc()
		b.journal.Lose(secondOffer(quotes, state.isBRL).ID)
	}

	if outcome.FlipBase {
		state.isBRL = !state.isBRL
	}

	snapshot, isBRL, err := b.wallet.Refresh(ctx)
	if err != nil {
		// Keep the post-trade state, including a base-side flip: losing it
		// would make the next cycle size from a currency no longer held.
		b.reportError("balance refresh", err)
		return state, nil
	}

	return cycleState{balances: snapshot, isBRL: isBRL}, nil
}

// pause sleeps for the remainder of the pacer interval.
func (b *TradingBot) pause(ctx context.Context, elapsed time.Duration) error {
	delay := nextDelay(b.interval, elapsed)
	if delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// nextDelay returns the time left in the pacer interval, never negative.
func nextDelay(interval, elapsed time.Duration) time.Duration {
	if delay := interval - elapsed; delay > 0 {
		return delay
	}
	return 0
}

// secondOffer returns the offer confirmed second for the given base side.
func secondOffer(quotes offerer.Quotes, isBRL bool) domain.Offer {
	if isBRL {
		return quotes.Sell
	}
	return quotes.Buy
}

func isFinite(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0)
}

func (b *TradingBot) reportError(stage string, err error) {
	b.counters.Errors++
	metrics.Errors.Inc()
	b.journal.Error(stage, err)
	b.log.Error("operation failed",
		zap.String("stage", stage),
		zap.String("counters", b.counters.String()),
		zap.Error(err))
}
