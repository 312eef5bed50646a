package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehrbod2002/ibadmin/internal/events"
	"github.com/mehrbod2002/ibadmin/internal/models"
	"github.com/mehrbod2002/ibadmin/internal/service"
)

func TestCreateIBRequestValidates(t *testing.T) {
	e := newTestEnv(t)

	err := e.ibService.CreateIBRequest(&models.IBRequest{FullName: "", Email: "a@b.com"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	err = e.ibService.CreateIBRequest(&models.IBRequest{FullName: "A", Email: "not-an-email"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	err = e.ibService.CreateIBRequest(&models.IBRequest{FullName: "A", Email: "a@b.com", ReferredBy: "NOPE1234"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestCreateIBRequestStartsPending(t *testing.T) {
	e := newTestEnv(t)
	req := &models.IBRequest{UserID: "u1", FullName: "Jane", Email: "jane@example.com", Status: models.IBStatusApproved, ReferralCode: "SELFMADE"}

	require.NoError(t, e.ibService.CreateIBRequest(req))
	assert.Equal(t, models.IBStatusPending, req.Status)
	assert.Empty(t, req.ReferralCode)
	assert.Equal(t, []string{"created"}, e.pub.types(events.TopicIBStatus))

	err := e.ibService.CreateIBRequest(&models.IBRequest{UserID: "u1", FullName: "Jane", Email: "jane@example.com"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestApproveWithStructureSet(t *testing.T) {
	e := newTestEnv(t)
	ib := e.approvedIB(t, "u1")

	assert.Equal(t, models.IBStatusApproved, ib.Status)
	assert.Len(t, ib.ReferralCode, 8)
	assert.NotNil(t, ib.ApprovedAt)
	require.Len(t, ib.GroupAssignments, 2)
	assert.Equal(t, `real\Standard`, ib.GroupAssignments[0].GroupID)
	assert.Equal(t, "Standard Tier 1", ib.GroupAssignments[0].StructureName)
	assert.Equal(t, 5.0, ib.USDPerLot)
	assert.Equal(t, 15.0, ib.SpreadSharePercentage)

	stored, err := e.ibService.GetIBRequest(ib.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, ib.ReferralCode, stored.ReferralCode)
	assert.Contains(t, e.logs.actions(), "UpdateIBRequestStatus")
	assert.Equal(t, []string{"created", "approved"}, e.pub.types(events.TopicIBStatus))
}

func TestApproveRequiresRates(t *testing.T) {
	e := newTestEnv(t)
	req := &models.IBRequest{FullName: "Jane", Email: "jane@example.com"}
	require.NoError(t, e.ibService.CreateIBRequest(req))

	_, err := e.ibService.UpdateStatus(req.ID.Hex(), service.StatusUpdate{Status: models.IBStatusApproved}, admin)
	assert.ErrorIs(t, err, service.ErrInvalidInput)

	ib, err := e.ibService.UpdateStatus(req.ID.Hex(), service.StatusUpdate{
		Status:                models.IBStatusApproved,
		USDPerLot:             floatPtr(7),
		SpreadSharePercentage: floatPtr(12.5),
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, 7.0, ib.USDPerLot)
	assert.Equal(t, 12.5, ib.SpreadSharePercentage)
	assert.Empty(t, ib.GroupAssignments)
}

func TestApproveRejectsOutOfRangeSpread(t *testing.T) {
	e := newTestEnv(t)
	req := &models.IBRequest{FullName: "Jane", Email: "jane@example.com"}
	require.NoError(t, e.ibService.CreateIBRequest(req))

	_, err := e.ibService.UpdateStatus(req.ID.Hex(), service.StatusUpdate{
		Status:                models.IBStatusApproved,
		SpreadSharePercentage: floatPtr(150),
	}, admin)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestStatusTransitions(t *testing.T) {
	e := newTestEnv(t)
	ib := e.approvedIB(t, "u1")
	code := ib.ReferralCode

	_, err := e.ibService.UpdateStatus(ib.ID.Hex(), service.StatusUpdate{Status: models.IBStatusRejected}, admin)
	assert.ErrorIs(t, err, service.ErrInvalidTransition)

	banned, err := e.ibService.UpdateStatus(ib.ID.Hex(), service.StatusUpdate{Status: models.IBStatusBanned, AdminComment: "fraud"}, admin)
	require.NoError(t, err)
	assert.Equal(t, models.IBStatusBanned, banned.Status)
	assert.Equal(t, "fraud", banned.AdminComment)

	// Re-approval keeps existing assignments and referral code.
	again, err := e.ibService.UpdateStatus(ib.ID.Hex(), service.StatusUpdate{Status: models.IBStatusApproved}, admin)
	require.NoError(t, err)
	assert.Equal(t, code, again.ReferralCode)
	assert.Len(t, again.GroupAssignments, 2)

	_, err = e.ibService.UpdateStatus(ib.ID.Hex(), service.StatusUpdate{Status: "archived"}, admin)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestGetIBRequestErrors(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.ibService.GetIBRequest("xyz")
	assert.ErrorIs(t, err, service.ErrInvalidID)

	_, err = e.ibService.GetIBRequest("64b7f0c2a1b2c3d4e5f60718")
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, _, err = e.ibService.GetIBRequests(models.IBRequestFilter{Status: "weird"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestReferralFromApprovedIB(t *testing.T) {
	e := newTestEnv(t)
	parent := e.approvedIB(t, "u1")

	child := &models.IBRequest{UserID: "u2", FullName: "Sub Partner", Email: "sub@example.com", ReferredBy: parent.ReferralCode}
	require.NoError(t, e.ibService.CreateIBRequest(child))
	assert.Equal(t, parent.ReferralCode, child.ReferredBy)
}

func TestReapplyAfterRejection(t *testing.T) {
	e := newTestEnv(t)

	first := &models.IBRequest{UserID: "u1", FullName: "Jane", Email: "jane@example.com"}
	require.NoError(t, e.ibService.CreateIBRequest(first))
	_, err := e.ibService.UpdateStatus(first.ID.Hex(), service.StatusUpdate{Status: models.IBStatusRejected}, admin)
	require.NoError(t, err)

	rejected, err := e.ibService.GetIBRequestByUserID("u1")
	require.NoError(t, err)
	assert.Equal(t, models.IBStatusRejected, rejected.Status)

	// Several rejected rows ahead of the approved one.
	for i := 0; i < 5; i++ {
		extra := &models.IBRequest{UserID: "u1", FullName: "Jane", Email: "jane@example.com"}
		require.NoError(t, e.ibService.CreateIBRequest(extra))
		_, err := e.ibService.UpdateStatus(extra.ID.Hex(), service.StatusUpdate{Status: models.IBStatusRejected}, admin)
		require.NoError(t, err)
	}

	ib := e.approvedIB(t, "u1")
	seedTrades(t, e, ib)

	current, err := e.ibService.GetIBRequestByUserID("u1")
	require.NoError(t, err)
	assert.Equal(t, ib.ID, current.ID)
	assert.Equal(t, models.IBStatusApproved, current.Status)

	w := &models.Withdrawal{Amount: 0.01, Method: "bank"}
	require.NoError(t, e.withdrawalService.RequestWithdrawal("u1", w))
	assert.Equal(t, ib.ID.Hex(), w.IBRequestID)
}

func TestDuplicateApplicationWhileApproved(t *testing.T) {
	e := newTestEnv(t)

	old := &models.IBRequest{UserID: "u1", FullName: "Jane", Email: "jane@example.com"}
	require.NoError(t, e.ibService.CreateIBRequest(old))
	_, err := e.ibService.UpdateStatus(old.ID.Hex(), service.StatusUpdate{Status: models.IBStatusRejected}, admin)
	require.NoError(t, err)
	e.approvedIB(t, "u1")

	for i := 0; i < 10; i++ {
		err := e.ibService.CreateIBRequest(&models.IBRequest{UserID: "u1", FullName: "Jane", Email: "jane@example.com"})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	}

	counts, err := e.ibs.CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.IBStatusApproved])
	assert.Zero(t, counts[models.IBStatusPending])
}
