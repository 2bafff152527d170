package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type AlertStatus string

const (
	AlertDelivered AlertStatus = "delivered"
	AlertFailed    AlertStatus = "failed"
)

// AlertEvent records the outcome of one alert delivery attempt chain.
type AlertEvent struct {
	SessionID    string          `json:"session_id"`
	Function     StakingFunction `json:"function"`
	Digest       string          `json:"digest"`
	Sender       string          `json:"sender"`
	Amount       decimal.Decimal `json:"amount"`
	FiatValue    decimal.Decimal `json:"fiat_value"`
	Status       AlertStatus     `json:"status"`
	Attempts     uint            `json:"attempts"`
	Error        string          `json:"error,omitempty"`
	DispatchedAt time.Time       `json:"dispatched_at"`
}
