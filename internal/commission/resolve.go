package commission

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AccountRates is a trading account row. Nil rates mean "not overridden".
type AccountRates struct {
	AccountID             string
	Group                 string
	USDPerLot             *decimal.Decimal
	SpreadSharePercentage *decimal.Decimal
}

// GroupRate is one group assignment of an IB profile.
type GroupRate struct {
	GroupID               string
	Label                 string
	USDPerLot             decimal.Decimal
	SpreadSharePercentage decimal.Decimal
}

type Profile struct {
	USDPerLot             decimal.Decimal
	SpreadSharePercentage decimal.Decimal
	Groups                []GroupRate
}

// ResolveRate picks the rate for an account. Each field is resolved on its
// own with precedence account override, then matched group, then profile
// default.
func ResolveRate(acct AccountRates, p Profile) Rate {
	r := Rate{
		USDPerLot:             p.USDPerLot,
		SpreadSharePercentage: p.SpreadSharePercentage,
		Source:                SourceProfile,
		SpreadSource:          SourceProfile,
	}

	if g, ok := MatchGroup(acct.Group, p.Groups); ok {
		r.USDPerLot = g.USDPerLot
		r.SpreadSharePercentage = g.SpreadSharePercentage
		r.Source = SourceGroup
		r.SpreadSource = SourceGroup
	}

	if acct.USDPerLot != nil {
		r.USDPerLot = *acct.USDPerLot
		r.Source = SourceAccount
	}
	if acct.SpreadSharePercentage != nil {
		r.SpreadSharePercentage = *acct.SpreadSharePercentage
		r.SpreadSource = SourceAccount
	}
	return r
}

// MatchGroup finds the assignment for an MT5 group string. An exact group id
// or label wins. Otherwise the longest label contained in the account group
// (case-insensitive) is used; ties keep profile order.
func MatchGroup(accountGroup string, groups []GroupRate) (GroupRate, bool) {
	group := strings.ToLower(strings.TrimSpace(accountGroup))
	if group == "" {
		return GroupRate{}, false
	}

	for _, g := range groups {
		if strings.EqualFold(g.GroupID, group) || strings.EqualFold(g.Label, group) {
			return g, true
		}
	}

	best := -1
	for i, g := range groups {
		label := strings.ToLower(strings.TrimSpace(g.Label))
		if label == "" || !strings.Contains(group, label) {
			continue
		}
		if best < 0 || len(label) > len(strings.TrimSpace(groups[best].Label)) {
			best = i
		}
	}
	if best < 0 {
		return GroupRate{}, false
	}
	return groups[best], true
}
