package service

import (
	"sort"

	"github.com/mehrbod2002/ibadmin/internal/commission"
	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/repository"
)

const topIBs = 5

type DashboardService interface {
	GetDashboard() (*models.Dashboard, error)
}

type dashboardService struct {
	ibRepo         repository.IBRequestRepository
	withdrawalRepo repository.WithdrawalRepository
	commissionRepo repository.CommissionRepository
	groupRepo      repository.TradingGroupRepository
}

func NewDashboardService(
	ibRepo repository.IBRequestRepository,
	withdrawalRepo repository.WithdrawalRepository,
	commissionRepo repository.CommissionRepository,
	groupRepo repository.TradingGroupRepository,
) DashboardService {
	return &dashboardService{
		ibRepo:         ibRepo,
		withdrawalRepo: withdrawalRepo,
		commissionRepo: commissionRepo,
		groupRepo:      groupRepo,
	}
}

// GetDashboard aggregates totals from the last commission snapshots; IBs
// that were never synced do not contribute.
func (s *dashboardService) GetDashboard() (*models.Dashboard, error) {
	counts, err := s.ibRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	pending, err := s.withdrawalRepo.GetWithdrawals(models.WithdrawalStatusPending)
	if err != nil {
		return nil, err
	}
	snapshots, err := s.commissionRepo.GetSnapshots()
	if err != nil {
		return nil, err
	}
	groups, err := s.groupRepo.GetTradingGroups()
	if err != nil {
		return nil, err
	}

	d := &models.Dashboard{
		IBRequestsByStatus: counts,
		PendingWithdrawals: int64(len(pending)),
		TradingGroups:      len(groups),
		TopIBs:             []models.IBCommissionRank{},
	}

	pendingAmount := commission.FromFloat(0)
	for _, w := range pending {
		pendingAmount = pendingAmount.Add(commission.FromFloat(w.Amount))
	}
	d.PendingAmount = money(pendingAmount)

	total := commission.FromFloat(0)
	for _, snap := range snapshots {
		total = total.Add(commission.FromFloat(snap.TotalCommission))
	}
	d.TotalCommission = money(total)

	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].TotalCommission > snapshots[j].TotalCommission
	})
	for _, snap := range snapshots {
		if len(d.TopIBs) == topIBs {
			break
		}
		rank := models.IBCommissionRank{IBRequestID: snap.IBRequestID, TotalCommission: snap.TotalCommission}
		if objID, err := parseID(snap.IBRequestID); err == nil {
			if req, err := s.ibRepo.GetIBRequestByID(objID); err == nil && req != nil {
				rank.FullName = req.FullName
			}
		}
		d.TopIBs = append(d.TopIBs, rank)
	}
	return d, nil
}
