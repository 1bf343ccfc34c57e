package simulation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunFundDeterministic(t *testing.T) {
	fund := decimal.NewFromInt(10000)
	params := Params{Symbols: []string{"AAPL", "MSFT"}, Steps: 100, Seed: 42}

	first, err := RunFund(fund, params)
	require.NoError(t, err)
	second, err := RunFund(fund, params)
	require.NoError(t, err)

	assert.True(t, first.FinalValue.Equal(second.FinalValue))
	assert.Equal(t, len(first.Trades), len(second.Trades))
}

func TestRunFundAccounting(t *testing.T) {
	fund := decimal.NewFromInt(10000)
	res, err := RunFund(fund, Params{Symbols: []string{"AAPL"}, Steps: 200, Seed: 7})
	require.NoError(t, err)

	assert.True(t, res.InitialValue.Equal(fund))
	assert.True(t, res.FinalValue.IsPositive())
	assert.True(t, res.Pnl.Equal(res.FinalValue.Sub(res.InitialValue)))
	assert.NotEmpty(t, res.Trades)

	for _, trade := range res.Trades {
		assert.Contains(t, []string{"buy", "sell"}, trade.Side)
		assert.Equal(t, "AAPL", trade.Symbol)
		assert.True(t, trade.Quantity.IsPositive())
		assert.True(t, trade.Price.IsPositive())
	}
}

func TestRunFundRejectsNonPositiveFund(t *testing.T) {
	_, err := RunFund(decimal.Zero, Params{})
	assert.Error(t, err)

	_, err = RunFund(decimal.NewFromInt(-100), Params{})
	assert.Error(t, err)
}

func TestRunFundDefaultSymbols(t *testing.T) {
	res, err := RunFund(decimal.NewFromInt(5000), Params{Steps: 50, Seed: 1})
	require.NoError(t, err)

	require.NotEmpty(t, res.Trades)
	for _, trade := range res.Trades {
		assert.Contains(t, defaultSymbols, trade.Symbol)
	}
}

func TestRunPortfolio(t *testing.T) {
	positions := map[string]float64{"AAPL": 10, "MSFT": 5}
	res, err := RunPortfolio(positions, Params{Steps: 150, Seed: 99})
	require.NoError(t, err)

	assert.True(t, res.InitialValue.IsPositive())
	assert.True(t, res.FinalValue.IsPositive())
	assert.True(t, res.Pnl.Equal(res.FinalValue.Sub(res.InitialValue)))
}

func TestRunPortfolioDeterministic(t *testing.T) {
	positions := map[string]float64{"GOOG": 3, "AMZN": 2}
	params := Params{Steps: 120, Seed: 5}

	first, err := RunPortfolio(positions, params)
	require.NoError(t, err)
	second, err := RunPortfolio(positions, params)
	require.NoError(t, err)

	assert.True(t, first.FinalValue.Equal(second.FinalValue))
}

func TestRunPortfolioRejectsEmpty(t *testing.T) {
	_, err := RunPortfolio(nil, Params{})
	assert.ErrorIs(t, err, ErrNoPositions)
}

func TestPricePathStable(t *testing.T) {
	a := pricePath("AAPL", 42, 10)
	b := pricePath("AAPL", 42, 10)
	assert.Equal(t, a, b)

	c := pricePath("MSFT", 42, 10)
	assert.NotEqual(t, a, c)

	for _, price := range a {
		assert.Greater(t, price, 0.0)
	}
}
