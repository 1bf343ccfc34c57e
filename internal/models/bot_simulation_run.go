package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// SimulationType distinguishes a cash-starting-point run from a
// pre-seeded positions run.
type SimulationType string

const (
	SimulationTypeFund      SimulationType = "fund"
	SimulationTypePortfolio SimulationType = "portfolio"
)

// RunStatus is the lifecycle state of a simulation run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

type BotSimulationRun struct {
	ID               uint            `gorm:"primarykey" json:"id"`
	ExternalID       string          `gorm:"size:36;uniqueIndex" json:"external_id"`
	SimulationType   SimulationType  `gorm:"size:20;not null;index" json:"simulation_type"`
	InitialFund      decimal.Decimal `gorm:"type:numeric(20,8)" json:"initial_fund"`
	InitialPortfolio json.RawMessage `gorm:"type:jsonb" json:"initial_portfolio,omitempty"`
	Params           json.RawMessage `gorm:"type:jsonb" json:"params,omitempty"`
	Status           RunStatus       `gorm:"size:20;not null;default:pending;index" json:"status"`
	FinalValue       decimal.Decimal `gorm:"type:numeric(20,8)" json:"final_value"`
	Pnl              decimal.Decimal `gorm:"type:numeric(20,8)" json:"pnl"`
	TradeCount       int             `json:"trade_count"`
	Error            string          `gorm:"type:text" json:"error,omitempty"`
	EnqueuedAt       *time.Time      `json:"enqueued_at,omitempty"`
	StartedAt        *time.Time      `json:"started_at,omitempty"`
	FinishedAt       *time.Time      `json:"finished_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (BotSimulationRun) TableName() string {
	return "bot_simulation_run"
}

var (
	ErrUnknownSimulationType = errors.New("unknown simulation type")
	ErrMissingInitialFund    = errors.New("fund simulation requires a positive initial_fund")
	ErrMissingPortfolio      = errors.New("portfolio simulation requires a non-empty initial_portfolio")
)

// Validate checks the invariants of a run before it is persisted.
func (r *BotSimulationRun) Validate() error {
	switch r.SimulationType {
	case SimulationTypeFund:
		if !r.InitialFund.IsPositive() {
			return ErrMissingInitialFund
		}
	case SimulationTypePortfolio:
		positions, err := r.PortfolioPositions()
		if err != nil {
			return err
		}
		if len(positions) == 0 {
			return ErrMissingPortfolio
		}
	default:
		return ErrUnknownSimulationType
	}
	return nil
}

// PortfolioPositions decodes initial_portfolio into symbol -> quantity.
func (r *BotSimulationRun) PortfolioPositions() (map[string]float64, error) {
	if len(r.InitialPortfolio) == 0 {
		return nil, nil
	}
	var positions map[string]float64
	if err := json.Unmarshal(r.InitialPortfolio, &positions); err != nil {
		return nil, err
	}
	return positions, nil
}

// Terminal reports whether the run reached a final state.
func (r *BotSimulationRun) Terminal() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed
}
