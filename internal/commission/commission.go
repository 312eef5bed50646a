// Package commission computes IB commission for closed trades.
//
// All arithmetic is done on decimals so that fixed commission is exactly
// lots times the per-lot rate; rounding only happens for display.
package commission

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Source string

const (
	SourceAccount Source = "account"
	SourceGroup   Source = "group"
	SourceProfile Source = "profile"
)

// Rate is the rate context a trade is paid out with.
type Rate struct {
	USDPerLot             decimal.Decimal `json:"usd_per_lot"`
	SpreadSharePercentage decimal.Decimal `json:"spread_share_percentage"`
	Source                Source          `json:"source"`
	SpreadSource          Source          `json:"spread_source"`
}

type Trade struct {
	DealID    string
	AccountID string
	Symbol    string
	Lots      decimal.Decimal
	// SpreadCommission, when set, replaces the computed spread share.
	SpreadCommission *decimal.Decimal
}

type Breakdown struct {
	Fixed  decimal.Decimal `json:"fixed_commission"`
	Spread decimal.Decimal `json:"spread_commission"`
	Total  decimal.Decimal `json:"total_ib_commission"`
	Rate   Rate            `json:"rate"`
}

func Fixed(lots, usdPerLot decimal.Decimal) decimal.Decimal {
	return lots.Mul(usdPerLot)
}

func Spread(lots, percentage decimal.Decimal, override *decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return lots.Mul(percentage).Div(hundred)
}

// Compute returns the commission of a single trade. Volumes reported as
// negative (sell side on some bridges) are taken by magnitude.
func Compute(t Trade, r Rate) Breakdown {
	lots := t.Lots.Abs()
	fixed := Fixed(lots, r.USDPerLot)
	spread := Spread(lots, r.SpreadSharePercentage, t.SpreadCommission)
	return Breakdown{
		Fixed:  fixed,
		Spread: spread,
		Total:  fixed.Add(spread),
		Rate:   r,
	}
}

// Round2 rounds half away from zero to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FromFloat converts stored float amounts into the engine's decimal form.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func FromFloatPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}
