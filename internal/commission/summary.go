package commission

import (
	"sort"

	"github.com/shopspring/decimal"
)

type Entry struct {
	Trade Trade
	Rate  Rate
}

type SymbolTotal struct {
	Symbol string          `json:"symbol"`
	Trades int             `json:"trades"`
	Lots   decimal.Decimal `json:"lots"`
	Total  decimal.Decimal `json:"total"`
}

type Summary struct {
	Trades   int             `json:"trades"`
	Lots     decimal.Decimal `json:"lots"`
	Fixed    decimal.Decimal `json:"fixed_commission"`
	Spread   decimal.Decimal `json:"spread_commission"`
	Total    decimal.Decimal `json:"total_commission"`
	BySymbol []SymbolTotal   `json:"by_symbol"`
}

// Summarize folds per-trade breakdowns. BySymbol is ordered by total,
// largest first, then by symbol name.
func Summarize(entries []Entry) Summary {
	s := Summary{}
	symbols := make(map[string]*SymbolTotal)

	for _, e := range entries {
		b := Compute(e.Trade, e.Rate)
		lots := e.Trade.Lots.Abs()

		s.Trades++
		s.Lots = s.Lots.Add(lots)
		s.Fixed = s.Fixed.Add(b.Fixed)
		s.Spread = s.Spread.Add(b.Spread)
		s.Total = s.Total.Add(b.Total)

		st, ok := symbols[e.Trade.Symbol]
		if !ok {
			st = &SymbolTotal{Symbol: e.Trade.Symbol}
			symbols[e.Trade.Symbol] = st
		}
		st.Trades++
		st.Lots = st.Lots.Add(lots)
		st.Total = st.Total.Add(b.Total)
	}

	s.BySymbol = make([]SymbolTotal, 0, len(symbols))
	for _, st := range symbols {
		s.BySymbol = append(s.BySymbol, *st)
	}
	sort.Slice(s.BySymbol, func(i, j int) bool {
		if c := s.BySymbol[i].Total.Cmp(s.BySymbol[j].Total); c != 0 {
			return c > 0
		}
		return s.BySymbol[i].Symbol < s.BySymbol[j].Symbol
	})
	return s
}
