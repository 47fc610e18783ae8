package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	Cycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_cycles_total",
		Help: "Number of trade cycles run",
	})

	ProfitTrades = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_trades_profit_total",
		Help: "Number of fully executed arbitrage trades",
	})

	LoseTrades = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_trades_lose_total",
		Help: "Number of detected partial fills",
	})

	Errors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "arb_errors_total",
		Help: "Number of failed operations inside cycles",
	})

	SpreadPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arb_spread_percent",
		Help: "Last measured buy/sell spread in percent",
	})

	CycleInterval = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "arb_cycle_interval_seconds",
		Help: "Pacer-derived delay between cycles",
	})
)

func init() {
	prometheus.MustRegister(
		Cycles,
		ProfitTrades,
		LoseTrades,
		Errors,
		SpreadPercent,
		CycleInterval,
	)
}
