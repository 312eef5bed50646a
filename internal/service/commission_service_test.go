package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehrbod2002/ibadmin/internal/commission"
	"github.com/mehrbod2002/ibadmin/internal/events"
	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/service"
)

// seedTrades links two accounts to the IB and books three trades worth
// 26.00 fixed + 1.40 spread:
//
//	D1 A1 real\ECN      EURUSD 2 lots  -> 4.00 + 0.60
//	D2 A2 real\Standard XAUUSD 2 lots  -> 20.00 + 0.30 (account rate $10)
//	D3 A1 real\ECN      EURUSD 1 lot   -> 2.00 + 0.50 (spread override)
func seedTrades(t *testing.T, e *testEnv, ib *models.IBRequest) {
	t.Helper()
	require.NoError(t, e.commissionService.RecordAccount(&models.TradingAccount{AccountID: "A1", Group: `real\ECN`}, ib.ReferralCode))
	require.NoError(t, e.commissionService.RecordAccount(&models.TradingAccount{AccountID: "A2", Group: `real\Standard`, USDPerLot: floatPtr(10)}, ib.ReferralCode))

	now := time.Now()
	require.NoError(t, e.commissionService.RecordTrade(&models.Trade{DealID: "D1", AccountID: "A1", Symbol: "EURUSD", Volume: 2, CloseTime: now}))
	require.NoError(t, e.commissionService.RecordTrade(&models.Trade{DealID: "D2", AccountID: "A2", Symbol: "XAUUSD", Volume: 2, CloseTime: now}))
	require.NoError(t, e.commissionService.RecordTrade(&models.Trade{DealID: "D3", AccountID: "A1", Symbol: "EURUSD", Volume: 1, SpreadCommission: floatPtr(0.5), CloseTime: now}))
}

func TestRecordAccountResolvesReferralCode(t *testing.T) {
	e := newTestEnv(t)
	ib := e.approvedIB(t, "u1")

	require.NoError(t, e.commissionService.RecordAccount(&models.TradingAccount{AccountID: "A1", Group: `real\ECN`}, ib.ReferralCode))
	assert.Equal(t, ib.ID.Hex(), e.accounts.accounts["A1"].IBRequestID)

	require.NoError(t, e.commissionService.RecordAccount(&models.TradingAccount{AccountID: "A9"}, "UNKNOWN1"))
	assert.Empty(t, e.accounts.accounts["A9"].IBRequestID)

	assert.ErrorIs(t, e.commissionService.RecordAccount(&models.TradingAccount{}, ""), service.ErrInvalidInput)
}

func TestRecordTradeInheritsAccountLink(t *testing.T) {
	e := newTestEnv(t)
	ib := e.approvedIB(t, "u1")
	seedTrades(t, e, ib)

	d1 := e.trades.trades["D1"]
	assert.Equal(t, ib.ID.Hex(), d1.IBRequestID)
	assert.Equal(t, `real\ECN`, d1.Group)

	assert.ErrorIs(t, e.commissionService.RecordTrade(&models.Trade{AccountID: "A1"}), service.ErrInvalidInput)
}

func TestSyncCommission(t *testing.T) {
	e := newTestEnv(t)
	ib := e.approvedIB(t, "u1")
	seedTrades(t, e, ib)

	snap, err := e.commissionService.SyncCommission(ib.ID.Hex(), admin)
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Trades)
	assert.Equal(t, 5.0, snap.Lots)
	assert.Equal(t, 26.0, snap.FixedCommission)
	assert.Equal(t, 1.4, snap.SpreadCommission)
	assert.Equal(t, 27.4, snap.TotalCommission)
	assert.Equal(t, 27.4, snap.Available)
	require.Len(t, snap.BySymbol, 2)
	assert.Equal(t, "XAUUSD", snap.BySymbol[0].Symbol)
	assert.Equal(t, 20.3, snap.BySymbol[0].Total)
	assert.Equal(t, "EURUSD", snap.BySymbol[1].Symbol)
	assert.Equal(t, 7.1, snap.BySymbol[1].Total)

	assert.Equal(t, []string{"synced"}, e.pub.types(events.TopicCommission))
	assert.Same(t, snap, e.snapshots.snapshots[ib.ID.Hex()])

	stored, err := e.commissionService.GetCommission(ib.ID.Hex())
	require.NoError(t, err)
	assert.Same(t, snap, stored)
}

func TestSyncCommissionUnknownIB(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.commissionService.SyncCommission("64b7f0c2a1b2c3d4e5f60718", admin)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = e.commissionService.GetCommission("nope")
	assert.ErrorIs(t, err, service.ErrInvalidID)
}

func TestGetCommissionComputesWhenNeverSynced(t *testing.T) {
	e := newTestEnv(t)
	ib := e.approvedIB(t, "u1")
	seedTrades(t, e, ib)

	snap, err := e.commissionService.GetCommission(ib.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 27.4, snap.TotalCommission)
}

func TestTradeHistoryPricesEachTrade(t *testing.T) {
	e := newTestEnv(t)
	ib := e.approvedIB(t, "u1")
	seedTrades(t, e, ib)

	history, err := e.commissionService.TradeHistory("A1")
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, "D1", history[0].DealID)
	assert.Equal(t, 2.0, history[0].USDPerLot)
	assert.Equal(t, 30.0, history[0].SpreadSharePercentage)
	assert.Equal(t, string(commission.SourceGroup), history[0].RateSource)
	assert.Equal(t, string(commission.SourceGroup), history[0].SpreadRateSource)
	assert.Equal(t, 4.0, history[0].FixedCommission)
	assert.Equal(t, 0.6, history[0].SpreadCommissionValue)
	assert.Equal(t, 4.6, history[0].TotalIBCommission)

	assert.Equal(t, 0.5, history[1].SpreadCommissionValue)
	assert.Equal(t, 2.5, history[1].TotalIBCommission)

	history, err = e.commissionService.TradeHistory("A2")
	require.NoError(t, err)
	require.Len(t, history, 1)
	// Fixed rate overridden on the account, spread share still from the group.
	assert.Equal(t, string(commission.SourceAccount), history[0].RateSource)
	assert.Equal(t, string(commission.SourceGroup), history[0].SpreadRateSource)
	assert.Equal(t, 20.3, history[0].TotalIBCommission)
}

func TestTradeHistoryWithoutIBIsZero(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, e.commissionService.RecordTrade(&models.Trade{DealID: "X1", AccountID: "ORPHAN", Symbol: "EURUSD", Volume: 3}))

	history, err := e.commissionService.TradeHistory("ORPHAN")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Zero(t, history[0].TotalIBCommission)
	assert.Equal(t, string(commission.SourceProfile), history[0].RateSource)
}

func TestSyncTradesLinksEarlierDeals(t *testing.T) {
	e := newTestEnv(t)
	ib := e.approvedIB(t, "u1")

	require.NoError(t, e.commissionService.RecordTrade(&models.Trade{DealID: "D7", AccountID: "A3", Symbol: "GBPUSD", Volume: 1}))
	assert.Empty(t, e.trades.trades["D7"].IBRequestID)

	require.NoError(t, e.commissionService.RecordAccount(&models.TradingAccount{AccountID: "A3", Group: `real\Standard`}, ib.ReferralCode))
	n, err := e.commissionService.SyncTrades(ib.ID.Hex(), admin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, ib.ID.Hex(), e.trades.trades["D7"].IBRequestID)
	assert.Contains(t, e.logs.actions(), "SyncTradeHistory")

	n, err = e.commissionService.SyncTrades(ib.ID.Hex(), admin)
	require.NoError(t, err)
	assert.Zero(t, n)
}
