// Package simulation implements the trading engine behind simulation
// runs. Price data is a seeded random walk, so runs are reproducible
// given the same parameters.
package simulation

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultSteps  = 250
	smaWindow     = 5
	maxPathSteps  = 10000
	positionSlice = 0.25 // fraction of cash committed per buy signal
)

// Params tune a single simulation run.
type Params struct {
	Symbols []string `json:"symbols,omitempty"`
	Steps   int      `json:"steps,omitempty"`
	Seed    int64    `json:"seed,omitempty"`
}

// Trade is a single fill produced during a run.
type Trade struct {
	Side       string
	Symbol     string
	Quantity   decimal.Decimal
	Price      decimal.Decimal
	ExecutedAt time.Time
}

// Result summarizes a finished run.
type Result struct {
	InitialValue decimal.Decimal
	FinalValue   decimal.Decimal
	Pnl          decimal.Decimal
	Trades       []Trade
}

var (
	ErrNoSymbols   = errors.New("simulation requires at least one symbol")
	ErrNoPositions = errors.New("portfolio simulation requires at least one position")
)

// RunFund simulates a cash-starting-point run: the fund is split
// equally across the requested symbols and traded on momentum.
func RunFund(initialFund decimal.Decimal, p Params) (*Result, error) {
	if !initialFund.IsPositive() {
		return nil, fmt.Errorf("initial fund must be positive, got %s", initialFund)
	}
	p = withDefaults(p)
	if len(p.Symbols) == 0 {
		return nil, ErrNoSymbols
	}

	perSymbol := initialFund.Div(decimal.NewFromInt(int64(len(p.Symbols))))
	books := make([]*book, 0, len(p.Symbols))
	for _, symbol := range p.Symbols {
		books = append(books, &book{
			symbol: symbol,
			cash:   perSymbol,
			path:   pricePath(symbol, p.Seed, p.Steps),
		})
	}
	return run(initialFund, books, p), nil
}

// RunPortfolio simulates a pre-seeded positions run: holdings are
// valued at the opening price and traded from there.
func RunPortfolio(positions map[string]float64, p Params) (*Result, error) {
	if len(positions) == 0 {
		return nil, ErrNoPositions
	}
	p = withDefaults(p)

	symbols := make([]string, 0, len(positions))
	for symbol := range positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	initial := decimal.Zero
	books := make([]*book, 0, len(symbols))
	for _, symbol := range symbols {
		path := pricePath(symbol, p.Seed, p.Steps)
		qty := decimal.NewFromFloat(positions[symbol])
		open := decimal.NewFromFloat(path[0])
		initial = initial.Add(qty.Mul(open))
		books = append(books, &book{
			symbol:   symbol,
			quantity: qty,
			path:     path,
		})
	}
	return run(initial, books, p), nil
}

// book tracks cash and holdings for one symbol.
type book struct {
	symbol   string
	cash     decimal.Decimal
	quantity decimal.Decimal
	path     []float64
}

func run(initial decimal.Decimal, books []*book, p Params) *Result {
	start := time.Now().UTC()
	var trades []Trade

	for step := smaWindow; step < p.Steps; step++ {
		ts := start.Add(time.Duration(step) * time.Minute)
		for _, b := range books {
			price := b.path[step]
			sma := movingAverage(b.path, step-1, smaWindow)
			dec := decimal.NewFromFloat(price)

			switch {
			case price > sma && b.cash.IsPositive():
				// momentum up: commit a slice of cash
				spend := b.cash.Mul(decimal.NewFromFloat(positionSlice))
				qty := spend.Div(dec)
				b.cash = b.cash.Sub(spend)
				b.quantity = b.quantity.Add(qty)
				trades = append(trades, Trade{
					Side: "buy", Symbol: b.symbol,
					Quantity: qty, Price: dec, ExecutedAt: ts,
				})
			case price < sma && b.quantity.IsPositive():
				// momentum down: flatten the position
				proceeds := b.quantity.Mul(dec)
				trades = append(trades, Trade{
					Side: "sell", Symbol: b.symbol,
					Quantity: b.quantity, Price: dec, ExecutedAt: ts,
				})
				b.cash = b.cash.Add(proceeds)
				b.quantity = decimal.Zero
			}
		}
	}

	final := decimal.Zero
	for _, b := range books {
		last := decimal.NewFromFloat(b.path[p.Steps-1])
		final = final.Add(b.cash).Add(b.quantity.Mul(last))
	}

	return &Result{
		InitialValue: initial,
		FinalValue:   final,
		Pnl:          final.Sub(initial),
		Trades:       trades,
	}
}

var defaultSymbols = []string{"AAPL", "MSFT", "GOOG", "AMZN"}

func withDefaults(p Params) Params {
	if p.Steps <= 0 {
		p.Steps = defaultSteps
	}
	if p.Steps > maxPathSteps {
		p.Steps = maxPathSteps
	}
	if len(p.Symbols) == 0 {
		p.Symbols = defaultSymbols
	}
	return p
}
