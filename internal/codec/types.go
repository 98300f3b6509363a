package codec

import "github.com/shopspring/decimal"

// Coin is the Move coin wrapper {"value": "..."}.
type Coin struct {
	Value decimal.Decimal `json:"value"`
}

// Rebase is an elastic/base pair used for borrow accounting.
type Rebase struct {
	Elastic decimal.Decimal `json:"elastic"`
	Base    decimal.Decimal `json:"base"`
}
