package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SimulationTrade struct {
	ID         uint            `gorm:"primarykey" json:"id"`
	RunID      uint            `gorm:"not null;index" json:"run_id"`
	Side       string          `gorm:"size:4;not null" json:"side"`
	Symbol     string          `gorm:"size:16;not null" json:"symbol"`
	Quantity   decimal.Decimal `gorm:"type:numeric(20,8)" json:"quantity"`
	Price      decimal.Decimal `gorm:"type:numeric(20,8)" json:"price"`
	ExecutedAt time.Time       `json:"executed_at"`
	CreatedAt  time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (SimulationTrade) TableName() string {
	return "simulation_trade"
}
