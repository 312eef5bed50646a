package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/commission"
	"github.com/mehrbod2002/ibadmin/internal/events"
	"github.com/mehrbod2002/ibadmin/internal/metrics"
	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/repository"
)

type CommissionService interface {
	RecordTrade(trade *models.Trade) error
	RecordAccount(acct *models.TradingAccount, referralCode string) error
	TradeHistory(accountID string) ([]*models.TradeWithCommission, error)
	SyncTrades(ibRequestID string, actor Actor) (int64, error)
	SyncCommission(ibRequestID string, actor Actor) (*models.CommissionSnapshot, error)
	GetCommission(ibRequestID string) (*models.CommissionSnapshot, error)
	AvailableBalance(ibRequestID string) (decimal.Decimal, error)
}

type commissionService struct {
	ibRepo         repository.IBRequestRepository
	accountRepo    repository.TradingAccountRepository
	tradeRepo      repository.TradeRepository
	withdrawalRepo repository.WithdrawalRepository
	commissionRepo repository.CommissionRepository
	logService     LogService
	publisher      events.Publisher
	log            *zap.Logger
}

func NewCommissionService(
	ibRepo repository.IBRequestRepository,
	accountRepo repository.TradingAccountRepository,
	tradeRepo repository.TradeRepository,
	withdrawalRepo repository.WithdrawalRepository,
	commissionRepo repository.CommissionRepository,
	logService LogService,
	publisher events.Publisher,
	log *zap.Logger,
) CommissionService {
	return &commissionService{
		ibRepo:         ibRepo,
		accountRepo:    accountRepo,
		tradeRepo:      tradeRepo,
		withdrawalRepo: withdrawalRepo,
		commissionRepo: commissionRepo,
		logService:     logService,
		publisher:      publisher,
		log:            log,
	}
}

// ProfileOf converts the stored IB defaults and group assignments into the
// engine's profile.
func ProfileOf(req *models.IBRequest) commission.Profile {
	if req == nil {
		return commission.Profile{}
	}
	p := commission.Profile{
		USDPerLot:             commission.FromFloat(req.USDPerLot),
		SpreadSharePercentage: commission.FromFloat(req.SpreadSharePercentage),
		Groups:                make([]commission.GroupRate, 0, len(req.GroupAssignments)),
	}
	for _, a := range req.GroupAssignments {
		p.Groups = append(p.Groups, commission.GroupRate{
			GroupID:               a.GroupID,
			Label:                 a.GroupName,
			USDPerLot:             commission.FromFloat(a.USDPerLot),
			SpreadSharePercentage: commission.FromFloat(a.SpreadSharePercentage),
		})
	}
	return p
}

func accountRates(acct *models.TradingAccount, trade *models.Trade) commission.AccountRates {
	rates := commission.AccountRates{AccountID: trade.AccountID, Group: trade.Group}
	if acct == nil {
		return rates
	}
	if acct.Group != "" {
		rates.Group = acct.Group
	}
	rates.USDPerLot = commission.FromFloatPtr(acct.USDPerLot)
	rates.SpreadSharePercentage = commission.FromFloatPtr(acct.SpreadSharePercentage)
	return rates
}

func engineTrade(t *models.Trade) commission.Trade {
	return commission.Trade{
		DealID:           t.DealID,
		AccountID:        t.AccountID,
		Symbol:           t.Symbol,
		Lots:             commission.FromFloat(t.Volume),
		SpreadCommission: commission.FromFloatPtr(t.SpreadCommission),
	}
}

func money(d decimal.Decimal) float64 {
	return commission.Round2(d).InexactFloat64()
}

// RecordTrade stores a closed deal, linking it to the IB that owns the
// account when the bridge did not say.
func (s *commissionService) RecordTrade(trade *models.Trade) error {
	if trade.DealID == "" || trade.AccountID == "" {
		return fmt.Errorf("%w: deal_id and account_id are required", ErrInvalidInput)
	}

	acct, err := s.accountRepo.GetTradingAccount(trade.AccountID)
	if err != nil {
		return err
	}
	if acct != nil {
		if trade.IBRequestID == "" {
			trade.IBRequestID = acct.IBRequestID
		}
		if trade.Group == "" {
			trade.Group = acct.Group
		}
	}
	if trade.CloseTime.IsZero() {
		trade.CloseTime = time.Now()
	}
	return s.tradeRepo.UpsertTrade(trade)
}

func (s *commissionService) RecordAccount(acct *models.TradingAccount, referralCode string) error {
	if acct.AccountID == "" {
		return fmt.Errorf("%w: account_id is required", ErrInvalidInput)
	}
	if acct.IBRequestID == "" && referralCode != "" {
		ib, err := s.ibRepo.GetIBRequestByReferralCode(referralCode)
		if err != nil {
			return err
		}
		if ib != nil {
			acct.IBRequestID = ib.ID.Hex()
		}
	}
	return s.accountRepo.UpsertTradingAccount(acct)
}

// TradeHistory returns the closed trades of an account, each priced with
// the rate that applies to it.
func (s *commissionService) TradeHistory(accountID string) ([]*models.TradeWithCommission, error) {
	trades, err := s.tradeRepo.GetTradesByAccountID(accountID)
	if err != nil {
		return nil, err
	}
	acct, err := s.accountRepo.GetTradingAccount(accountID)
	if err != nil {
		return nil, err
	}

	profiles := make(map[string]commission.Profile)
	history := make([]*models.TradeWithCommission, 0, len(trades))
	for _, t := range trades {
		ibID := t.IBRequestID
		if acct != nil && acct.IBRequestID != "" {
			ibID = acct.IBRequestID
		}

		profile, ok := profiles[ibID]
		if !ok {
			profile, err = s.profileByID(ibID)
			if err != nil {
				return nil, err
			}
			profiles[ibID] = profile
		}

		rate := commission.ResolveRate(accountRates(acct, t), profile)
		b := commission.Compute(engineTrade(t), rate)
		history = append(history, &models.TradeWithCommission{
			Trade:                 t,
			USDPerLot:             rate.USDPerLot.InexactFloat64(),
			SpreadSharePercentage: rate.SpreadSharePercentage.InexactFloat64(),
			RateSource:            string(rate.Source),
			SpreadRateSource:      string(rate.SpreadSource),
			FixedCommission:       money(b.Fixed),
			SpreadCommissionValue: money(b.Spread),
			TotalIBCommission:     money(b.Total),
		})
	}
	return history, nil
}

func (s *commissionService) profileByID(ibRequestID string) (commission.Profile, error) {
	if ibRequestID == "" {
		return commission.Profile{}, nil
	}
	objID, err := parseID(ibRequestID)
	if err != nil {
		return commission.Profile{}, nil
	}
	req, err := s.ibRepo.GetIBRequestByID(objID)
	if err != nil {
		return commission.Profile{}, err
	}
	return ProfileOf(req), nil
}

func (s *commissionService) getIB(ibRequestID string) (*models.IBRequest, error) {
	objID, err := parseID(ibRequestID)
	if err != nil {
		return nil, err
	}
	req, err := s.ibRepo.GetIBRequestByID(objID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: ib request %s", ErrNotFound, ibRequestID)
	}
	return req, nil
}

// SyncTrades links every stored trade of the IB's accounts to the IB.
func (s *commissionService) SyncTrades(ibRequestID string, actor Actor) (int64, error) {
	if _, err := s.getIB(ibRequestID); err != nil {
		return 0, err
	}

	accounts, err := s.accountRepo.GetTradingAccountsByIB(ibRequestID)
	if err != nil {
		return 0, err
	}
	if len(accounts) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.AccountID)
	}
	n, err := s.tradeRepo.AssignTradesToIB(ids, ibRequestID)
	if err != nil {
		return 0, err
	}

	audit(s.logService, s.log, actor, &models.LogEntry{
		Action:      models.ActionSyncTradeHistory,
		IBRequestID: ibRequestID,
		Description: "Trade history linked to IB",
		Metadata: map[string]interface{}{
			"accounts": len(ids),
			"trades":   n,
		},
	})
	return n, nil
}

func (s *commissionService) summarize(req *models.IBRequest) (commission.Summary, error) {
	ibRequestID := req.ID.Hex()
	trades, err := s.tradeRepo.GetTradesByIB(ibRequestID)
	if err != nil {
		return commission.Summary{}, err
	}
	accounts, err := s.accountRepo.GetTradingAccountsByIB(ibRequestID)
	if err != nil {
		return commission.Summary{}, err
	}

	byAccount := make(map[string]*models.TradingAccount, len(accounts))
	for _, a := range accounts {
		byAccount[a.AccountID] = a
	}

	profile := ProfileOf(req)
	entries := make([]commission.Entry, 0, len(trades))
	for _, t := range trades {
		entries = append(entries, commission.Entry{
			Trade: engineTrade(t),
			Rate:  commission.ResolveRate(accountRates(byAccount[t.AccountID], t), profile),
		})
	}
	return commission.Summarize(entries), nil
}

func (s *commissionService) withdrawn(ibRequestID string) (decimal.Decimal, error) {
	withdrawals, err := s.withdrawalRepo.GetWithdrawalsByIB(ibRequestID)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, w := range withdrawals {
		if w.Status == models.WithdrawalStatusRejected {
			continue
		}
		total = total.Add(commission.FromFloat(w.Amount))
	}
	return total, nil
}

func (s *commissionService) SyncCommission(ibRequestID string, actor Actor) (*models.CommissionSnapshot, error) {
	snapshot, err := s.syncCommission(ibRequestID)
	if err != nil {
		metrics.CommissionSyncs.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.CommissionSyncs.WithLabelValues("ok").Inc()

	audit(s.logService, s.log, actor, &models.LogEntry{
		Action:      models.ActionSyncCommission,
		IBRequestID: ibRequestID,
		Description: "IB commission recomputed",
		Metadata: map[string]interface{}{
			"trades":           snapshot.Trades,
			"total_commission": snapshot.TotalCommission,
		},
	})
	publish(s.publisher, s.log, events.New(events.TopicCommission, "synced", ibRequestID, snapshot))
	return snapshot, nil
}

func (s *commissionService) syncCommission(ibRequestID string) (*models.CommissionSnapshot, error) {
	req, err := s.getIB(ibRequestID)
	if err != nil {
		return nil, err
	}
	summary, err := s.summarize(req)
	if err != nil {
		return nil, err
	}
	withdrawn, err := s.withdrawn(ibRequestID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.CommissionSnapshot{
		IBRequestID:      ibRequestID,
		Trades:           summary.Trades,
		Lots:             summary.Lots.InexactFloat64(),
		FixedCommission:  money(summary.Fixed),
		SpreadCommission: money(summary.Spread),
		TotalCommission:  money(summary.Total),
		Withdrawn:        money(withdrawn),
		Available:        money(summary.Total.Sub(withdrawn)),
		BySymbol:         make([]models.SymbolCommission, 0, len(summary.BySymbol)),
		SyncedAt:         time.Now(),
	}
	for _, st := range summary.BySymbol {
		snapshot.BySymbol = append(snapshot.BySymbol, models.SymbolCommission{
			Symbol: st.Symbol,
			Trades: st.Trades,
			Lots:   st.Lots.InexactFloat64(),
			Total:  money(st.Total),
		})
	}

	if err := s.commissionRepo.SaveSnapshot(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// GetCommission returns the last stored snapshot, computing one if the IB
// was never synced.
func (s *commissionService) GetCommission(ibRequestID string) (*models.CommissionSnapshot, error) {
	if _, err := parseID(ibRequestID); err != nil {
		return nil, err
	}
	snapshot, err := s.commissionRepo.GetSnapshot(ibRequestID)
	if err != nil {
		return nil, err
	}
	if snapshot != nil {
		return snapshot, nil
	}
	return s.syncCommission(ibRequestID)
}

// AvailableBalance is total commission from live trades, not the stored
// snapshot, minus every withdrawal that was not rejected.
func (s *commissionService) AvailableBalance(ibRequestID string) (decimal.Decimal, error) {
	req, err := s.getIB(ibRequestID)
	if err != nil {
		return decimal.Zero, err
	}
	summary, err := s.summarize(req)
	if err != nil {
		return decimal.Zero, err
	}
	withdrawn, err := s.withdrawn(ibRequestID)
	if err != nil {
		return decimal.Zero, err
	}
	return summary.Total.Sub(withdrawn), nil
}
