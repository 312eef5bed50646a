package service_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/service"
)

type testEnv struct {
	logs        *fakeLogRepo
	ibs         *fakeIBRepo
	structures  *fakeStructureRepo
	groups      *fakeGroupRepo
	accounts    *fakeAccountRepo
	symbols     *fakeSymbolRepo
	trades      *fakeTradeRepo
	withdrawals *fakeWithdrawalRepo
	snapshots   *fakeCommissionRepo
	pub         *recordingPublisher

	logService        service.LogService
	structureService  service.StructureService
	ibService         service.IBRequestService
	groupService      service.TradingGroupService
	symbolService     service.SymbolService
	commissionService service.CommissionService
	withdrawalService service.WithdrawalService
	dashboardService  service.DashboardService
}

var admin = service.Actor{AdminID: "admin-1", IPAddress: "127.0.0.1"}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()

	e := &testEnv{
		logs:        &fakeLogRepo{},
		ibs:         newFakeIBRepo(),
		structures:  newFakeStructureRepo(),
		groups:      &fakeGroupRepo{},
		accounts:    newFakeAccountRepo(),
		symbols:     newFakeSymbolRepo(),
		trades:      newFakeTradeRepo(),
		withdrawals: newFakeWithdrawalRepo(),
		snapshots:   newFakeCommissionRepo(),
		pub:         &recordingPublisher{},
	}

	e.logService = service.NewLogService(e.logs)
	e.structureService = service.NewStructureService(e.structures, e.logService, log)
	ibService, err := service.NewIBRequestService(e.ibs, e.structureService, e.logService, e.pub, log)
	require.NoError(t, err)
	e.ibService = ibService
	e.groupService = service.NewTradingGroupService(e.groups, e.logService, e.pub, log)
	e.symbolService = service.NewSymbolService(e.symbols, e.logService, log)
	e.commissionService = service.NewCommissionService(e.ibs, e.accounts, e.trades, e.withdrawals, e.snapshots, e.logService, e.pub, log)
	e.withdrawalService = service.NewWithdrawalService(e.withdrawals, e.ibService, e.commissionService, e.logService, e.pub, log)
	e.dashboardService = service.NewDashboardService(e.ibs, e.withdrawals, e.snapshots, e.groups)
	return e
}

// structureSet creates a Standard ($5, 15%) and ECN ($2, 30%) structure and a
// set containing both.
func (e *testEnv) structureSet(t *testing.T) *models.StructureSet {
	t.Helper()
	standard := &models.CommissionStructure{GroupID: `real\Standard`, StructureName: "Standard Tier 1", USDPerLot: 5, SpreadSharePercentage: 15, IsActive: true}
	ecn := &models.CommissionStructure{GroupID: `real\ECN`, StructureName: "ECN Tier 1", USDPerLot: 2, SpreadSharePercentage: 30, IsActive: true}
	require.NoError(t, e.structureService.CreateStructure(standard, admin))
	require.NoError(t, e.structureService.CreateStructure(ecn, admin))

	set := &models.StructureSet{
		Name: "Default",
		Structures: []models.StructureSetItem{
			{GroupName: "Standard", StructureID: standard.ID.Hex()},
			{GroupName: "ECN", StructureID: ecn.ID.Hex()},
		},
	}
	require.NoError(t, e.structureService.CreateStructureSet(set, admin))
	return set
}

// approvedIB creates and approves an IB on the default structure set.
func (e *testEnv) approvedIB(t *testing.T, userID string) *models.IBRequest {
	t.Helper()
	set := e.structureSet(t)
	req := &models.IBRequest{UserID: userID, FullName: "Jane Partner", Email: "jane@example.com", IBType: "individual"}
	require.NoError(t, e.ibService.CreateIBRequest(req))

	approved, err := e.ibService.UpdateStatus(req.ID.Hex(), service.StatusUpdate{
		Status:         models.IBStatusApproved,
		StructureSetID: set.ID.Hex(),
	}, admin)
	require.NoError(t, err)
	return approved
}

func floatPtr(f float64) *float64 { return &f }
