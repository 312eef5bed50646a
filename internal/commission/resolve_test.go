package commission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mehrbod2002/ibadmin/internal/commission"
)

func profile() commission.Profile {
	return commission.Profile{
		USDPerLot:             d("3"),
		SpreadSharePercentage: d("10"),
		Groups: []commission.GroupRate{
			{GroupID: `real\Standard`, Label: "Standard", USDPerLot: d("5"), SpreadSharePercentage: d("15")},
			{GroupID: `real\Standard Pro`, Label: "Standard Pro", USDPerLot: d("8"), SpreadSharePercentage: d("25")},
			{GroupID: `real\ECN`, Label: "ECN", USDPerLot: d("2"), SpreadSharePercentage: d("30")},
		},
	}
}

func TestResolveRatePrecedence(t *testing.T) {
	tests := []struct {
		name       string
		acct       commission.AccountRates
		wantUSD    string
		wantPct    string
		wantSource commission.Source
		wantSpread commission.Source
	}{
		{
			name:       "account override beats matching group",
			acct:       commission.AccountRates{Group: `real\ECN`, USDPerLot: dp("12"), SpreadSharePercentage: dp("40")},
			wantUSD:    "12",
			wantPct:    "40",
			wantSource: commission.SourceAccount,
			wantSpread: commission.SourceAccount,
		},
		{
			name:       "partial account override keeps group spread",
			acct:       commission.AccountRates{Group: `real\ECN`, USDPerLot: dp("12")},
			wantUSD:    "12",
			wantPct:    "30",
			wantSource: commission.SourceAccount,
			wantSpread: commission.SourceGroup,
		},
		{
			name:       "exact group id",
			acct:       commission.AccountRates{Group: `REAL\standard`},
			wantUSD:    "5",
			wantPct:    "15",
			wantSource: commission.SourceGroup,
			wantSpread: commission.SourceGroup,
		},
		{
			name:       "substring match",
			acct:       commission.AccountRates{Group: `demo\ecn-usd`},
			wantUSD:    "2",
			wantPct:    "30",
			wantSource: commission.SourceGroup,
			wantSpread: commission.SourceGroup,
		},
		{
			name:       "no group falls back to profile",
			acct:       commission.AccountRates{Group: `real\Cent`},
			wantUSD:    "3",
			wantPct:    "10",
			wantSource: commission.SourceProfile,
			wantSpread: commission.SourceProfile,
		},
		{
			name:       "empty group",
			acct:       commission.AccountRates{},
			wantUSD:    "3",
			wantPct:    "10",
			wantSource: commission.SourceProfile,
			wantSpread: commission.SourceProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := commission.ResolveRate(tt.acct, profile())
			assert.True(t, r.USDPerLot.Equal(d(tt.wantUSD)), "usd_per_lot = %s", r.USDPerLot)
			assert.True(t, r.SpreadSharePercentage.Equal(d(tt.wantPct)), "spread = %s", r.SpreadSharePercentage)
			assert.Equal(t, tt.wantSource, r.Source)
			assert.Equal(t, tt.wantSpread, r.SpreadSource)
		})
	}
}

func TestMatchGroupLongestLabelWins(t *testing.T) {
	g, ok := commission.MatchGroup(`real\b-book\standard pro\usd`, profile().Groups)
	assert.True(t, ok)
	assert.Equal(t, "Standard Pro", g.Label)

	g, ok = commission.MatchGroup(`real\b-book\standard\usd`, profile().Groups)
	assert.True(t, ok)
	assert.Equal(t, "Standard", g.Label)
}

func TestMatchGroupNoGroups(t *testing.T) {
	_, ok := commission.MatchGroup(`real\Standard`, nil)
	assert.False(t, ok)
}
